package version

// AppName is used in startup logs and the bot presence.
const AppName = "Biometric Sleep Bot"

// Version is overridden at build time via -ldflags.
var Version = "dev"
