package config

const (
	defaultEngineBinary   = "root"
	defaultMacroDir       = "scripts"
	defaultAmpToolsLoader = "loadAmpTools.C"
	defaultFSRootLogon    = "${FSROOT}/rootlogon.FSROOT.C"
	defaultFitMacro       = "extract_fit_results.cc"
	defaultBinMacro       = "extract_bin_info.cc"
	defaultFSRootMacro    = "extract_bin_info_fsroot.cc"
	defaultMassBranch     = "M4Pi"
	defaultTreeName       = "ntFSGlueX_100_221"
	defaultMesonIndex     = "2,3,4,5"
	defaultSortIndex      = -1
	defaultFitOutput      = "fits.csv"
	defaultDataOutput     = "data.csv"
	defaultBatchFitOutput = "best_fits.csv"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultHistoryPath    = "~/.local/share/fitcsv/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			Binary:         defaultEngineBinary,
			MacroDir:       defaultMacroDir,
			AmpToolsLoader: defaultAmpToolsLoader,
			FSRootLogon:    defaultFSRootLogon,
			FitMacro:       defaultFitMacro,
			BinMacro:       defaultBinMacro,
			FSRootMacro:    defaultFSRootMacro,
		},
		Conversion: Conversion{
			MassBranch:     defaultMassBranch,
			TreeName:       defaultTreeName,
			MesonIndex:     defaultMesonIndex,
			Sorted:         true,
			SortIndex:      defaultSortIndex,
			FitOutput:      defaultFitOutput,
			DataOutput:     defaultDataOutput,
			BatchFitOutput: defaultBatchFitOutput,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
