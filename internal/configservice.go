package internal

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/derWhity/gigboard/internal/ctxhelper"
	"github.com/derWhity/gigboard/internal/log"
	"github.com/derWhity/gigboard/internal/models"
)

const (
	// EnvDataDir overrides the data directory
	EnvDataDir = "GIGBOARD_DATA_DIR"
	// EnvDBFile overrides the name of the database file
	EnvDBFile = "GIGBOARD_DB_FILE"
	// EnvListenAddress overrides the address to listen at
	EnvListenAddress = "GIGBOARD_LISTEN_ADDRESS"
	// EnvLogLevel overrides the log level
	EnvLogLevel = "GIGBOARD_LOG_LEVEL"
)

// ConfigService provides access to the application's configuration
type ConfigService interface {
	// Load loads the application config from its default file location
	Load(ctx context.Context) error
	// LoadFromFile loads the configuration from the given JSON file
	LoadFromFile(ctx context.Context, filename string) error
	// ApplyEnvironment overrides configuration values with the ones set in the environment. The given .env files
	// are loaded into the environment first - missing files are ignored
	ApplyEnvironment(ctx context.Context, envFiles ...string) error
	// Write writes the current application configuration to the default file name
	Write(ctx context.Context) error
	// WriteToFile writes the current application configuration to a JSON file
	WriteToFile(ctx context.Context, filename string) error
	// GetConfig returns the current application configuration
	GetConfig(ctx context.Context) models.AppConfig
}

// -- ConfigService implementation -------------------------------------------------------------------------------------

type configService struct {
	sync.RWMutex
	configFilename string
	config         *models.AppConfig
}

// NewConfigService creates a new configuration service instance with the given default file name
func NewConfigService(configFilename string) ConfigService {
	return &configService{
		configFilename: configFilename,
	}
}

// Load loads the application config from its default file location
func (s *configService) Load(ctx context.Context) error {
	return s.LoadFromFile(ctx, s.configFilename)
}

// LoadFromFile loads the configuration from the given JSON file
func (s *configService) LoadFromFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Loading configuration file")
	conf, err := models.GetDefaultConfig()
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to create default config")
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "LoadFromFile: cannot load configuration file")
	}
	defer f.Close()
	if err = json.NewDecoder(f).Decode(&conf); err != nil {
		return errors.Wrap(err, "LoadFromFile: Failed to decode configuration file")
	}
	s.Lock()
	defer s.Unlock()
	s.config = conf
	return nil
}

// ApplyEnvironment overrides configuration values with the ones set in the environment
func (s *configService) ApplyEnvironment(ctx context.Context, envFiles ...string) error {
	logger := ctxhelper.Logger(ctx)
	for _, file := range envFiles {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		logger.WithField(log.FldFile, file).Info("Loading environment file")
		// Variables already set in the environment win over the ones in the file
		if err := godotenv.Load(file); err != nil {
			return errors.Wrapf(err, "ApplyEnvironment: Failed to load environment file '%s'", file)
		}
	}
	conf := s.GetConfig(ctx)
	overrides := map[string]*string{
		EnvDataDir:       &conf.DataDir,
		EnvDBFile:        &conf.DBFile,
		EnvListenAddress: &conf.ListenAddress,
		EnvLogLevel:      &conf.LogLevel,
	}
	for name, target := range overrides {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			logger.WithField("variable", name).Debug("Overriding configuration value from environment")
			*target = val
		}
	}
	if _, err := logrus.ParseLevel(conf.LogLevel); err != nil {
		return errors.Wrap(err, "ApplyEnvironment: Illegal log level")
	}
	s.Lock()
	defer s.Unlock()
	s.config = &conf
	return nil
}

// Write writes the current application configuration to the default file name
func (s *configService) Write(ctx context.Context) error {
	return s.WriteToFile(ctx, s.configFilename)
}

// WriteToFile writes the current application configuration to a JSON file
func (s *configService) WriteToFile(ctx context.Context, filename string) error {
	logger := ctxhelper.Logger(ctx)
	logger.WithField(log.FldFile, filename).Info("Writing configuration file")
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "WriteToFile: Cannot open configuration file '%s' to write to", filename)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	conf := s.GetConfig(ctx)
	if err := enc.Encode(&conf); err != nil {
		return errors.Wrap(err, "WriteToFile: Failed to serialize configuration data")
	}
	return nil
}

// GetConfig returns the current application configuration
func (s *configService) GetConfig(ctx context.Context) models.AppConfig {
	s.RLock()
	defer s.RUnlock()
	var ret models.AppConfig
	if s.config != nil {
		ret = *s.config
	} else {
		if tmp, err := models.GetDefaultConfig(); err == nil {
			ret = *tmp
		}
	}
	return ret
}
