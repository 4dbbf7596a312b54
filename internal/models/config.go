package models

import (
	"path"

	"github.com/kardianos/osext"
)

// AppConfig is the application's main configuration structure
type AppConfig struct {
	// The directory where Gigboard stores all of its data - defaults to the /data subdirectory of the folder, the
	// Gigboard executable resides in
	DataDir string `json:"dataDir"`
	// Name of the SQLite database file inside the data directory
	DBFile string `json:"dbFile"`
	// The IP address to listen at - including the port number
	ListenAddress string `json:"listenAddress"`
	// The minimum level of log messages to print (panic, fatal, error, warn, info, debug, trace)
	LogLevel string `json:"logLevel"`
}

// GetDefaultConfig returns the default configuration values for the application
func GetDefaultConfig() (*AppConfig, error) {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		return nil, err
	}
	return &AppConfig{
		DataDir:       path.Join(execDir, "data"),
		DBFile:        "gigboard.db",
		ListenAddress: ":5000",
		LogLevel:      "info",
	}, nil
}
