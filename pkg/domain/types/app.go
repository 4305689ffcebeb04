package types

// Version is the application version, overridable at build time via ldflags
var Version = "0.1.0"

// AppName is the command name used in help output and log file names
const AppName = "vsget"
