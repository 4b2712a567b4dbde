package common

// Log is the process-wide logger. It writes to stderr until MakeGlobalLogger
// replaces it at startup. Every other package (engine, gccmapper, clangscan,
// scheduler, compiledb) logs through this var.
var Log, _ = MakeLogger("stderr", 0, false, false)

func MakeGlobalLogger(logFile string, verbosity int64) error {
	logger, err := MakeLogger(logFile, verbosity, false, true)
	if err != nil {
		return err
	}
	Log = logger
	return nil
}
