package commands

// VERSION is the CLI version, in the format v<major>.<minor>.<patch>.
const VERSION = "v0.1.0"
