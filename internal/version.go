package internal

// Version is reported by the CLI and in the advertised agent capability.
const Version = "0.1.0"
