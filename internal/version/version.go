package version

// Version is set at build time through ldflags
var Version = "undefined"
