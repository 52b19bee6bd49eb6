// go-utr
// Copyright (c) 2025 The go-utr Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-utr.
//
// go-utr is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-utr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-utr; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	utr "github.com/rftools/go-utr"
)

// Config is the utrscan run configuration, loaded from an optional
// YAML file with UTRSCAN_* environment overrides.
type Config struct {
	Reader  ReaderConfig  `mapstructure:"reader"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ReaderConfig selects and configures the reader connection.
type ReaderConfig struct {
	// Address is the LAN model's host or host:port. Leave empty to use
	// a serial port instead.
	Address string `mapstructure:"address"`
	// SerialPort is the USB model's port path. Leave both Address and
	// SerialPort empty to auto-detect a serial reader.
	SerialPort string `mapstructure:"serial_port"`
	// BaudRate applies to serial connections.
	BaudRate int `mapstructure:"baud_rate"`
	// ConnectTimeout bounds connection setup and the init exchanges.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ScanConfig controls the inventory run.
type ScanConfig struct {
	// Rounds is the number of inventory rounds, 1 to 100.
	Rounds int `mapstructure:"rounds"`
	// RoundTimeout is the per-round deadline. Use a longer value when
	// many tags are expected in the field.
	RoundTimeout time.Duration `mapstructure:"round_timeout"`
	// Buzzer sounds the result tone after the run.
	Buzzer bool `mapstructure:"buzzer"`
}

// LoggingConfig configures the run log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is console or json.
	Format string `mapstructure:"format"`
	// Output is stdout, stderr, or a file path (rotated).
	Output string `mapstructure:"output"`
	// MaxSize is the rotation threshold in megabytes.
	MaxSize int `mapstructure:"max_size"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAge is the retention of rotated files in days.
	MaxAge int `mapstructure:"max_age"`
	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress"`
}

// loadConfig reads the configuration file (when present), applies
// environment overrides and validates the result.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("utrscan")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("UTRSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config file is fine; an explicit one is not.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reader.address", "")
	v.SetDefault("reader.serial_port", "")
	v.SetDefault("reader.baud_rate", 115200)
	v.SetDefault("reader.connect_timeout", "1s")

	v.SetDefault("scan.rounds", 10)
	v.SetDefault("scan.round_timeout", "3s")
	v.SetDefault("scan.buzzer", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "utrscan.log")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("logging.compress", false)
}

func validate(config *Config) error {
	if config.Reader.Address != "" && config.Reader.SerialPort != "" {
		return errors.New("reader.address and reader.serial_port are mutually exclusive")
	}
	if config.Reader.ConnectTimeout <= 0 {
		return errors.New("reader.connect_timeout must be positive")
	}
	if config.Reader.BaudRate <= 0 {
		return errors.New("reader.baud_rate must be positive")
	}
	if config.Scan.Rounds < 1 || config.Scan.Rounds > utr.MaxInventoryRounds {
		return fmt.Errorf("scan.rounds must be 1 to %d, got %d",
			utr.MaxInventoryRounds, config.Scan.Rounds)
	}
	if config.Scan.RoundTimeout <= 0 {
		return errors.New("scan.round_timeout must be positive")
	}
	return nil
}
