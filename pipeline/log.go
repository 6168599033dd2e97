package pipeline

import "log"

var verboseMode bool

// SetVerbose turns step-level pipeline logging on or off.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

func verboseLog(format string, v ...interface{}) {
	if verboseMode {
		log.Printf(format, v...)
	}
}
