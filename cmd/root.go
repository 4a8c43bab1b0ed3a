package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/skill-matcher/internal/cache"
)

const (
	app = "skill-matcher"

	envPrefix      = "SKILL_MATCHER"
	databaseURLEnv = "DATABASE_URL"
)

type Config struct {
	Dataset        string         `mapstructure:"dataset"`
	ScoreCacheSize int            `mapstructure:"score-cache-size" validate:"min=1"`
	Workers        int            `mapstructure:"workers" validate:"min=1,max=64"`
	Persist        bool           `mapstructure:"persist"`
	Database       DatabaseConfig `mapstructure:"database"`
	Ranking        RankingConfig  `mapstructure:"ranking"`
	Server         ServerConfig   `mapstructure:"server"`
}

type DatabaseConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type RankingConfig struct {
	MinimumScore   float64 `mapstructure:"minimum-score" validate:"min=0,max=100"`
	MinimumQuality string  `mapstructure:"minimum-quality" validate:"omitempty,oneof=Excellent 'Very Good' Good Fair Poor"`
	Limit          int     `mapstructure:"limit" validate:"min=0"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skill-matcher scores how well candidate profiles fit job offers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skill-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("dataset", "", "YAML or JSON file with profiles and jobs")
	rootCmd.PersistentFlags().Bool("persist", false, "save computed scores to the database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("persist", rootCmd.PersistentFlags().Lookup("persist"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset", "")
	v.SetDefault("persist", false)
	v.SetDefault("score-cache-size", cache.DefaultScoreCacheSize)
	v.SetDefault("workers", 4)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.dsn-file", "")
	v.SetDefault("ranking.minimum-score", 0)
	v.SetDefault("ranking.minimum-quality", "")
	v.SetDefault("ranking.limit", 0)
	v.SetDefault("server.address", ":8080")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless one was named explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}
