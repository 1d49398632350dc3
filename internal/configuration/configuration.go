/*
 * Copyright 2022 The Gremlins Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package configuration wraps Viper to provide layered configuration:
// flags, then environment variables, then a .polymute.yaml file.
package configuration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// The list of keys available in config files and as flags.
const (
	RunTestFileKey     = "run.test-file"
	RunFunctionKey     = "run.function"
	RunTestCmdKey      = "run.test-cmd"
	RunTimeoutMultKey  = "run.timeout-mult"
	RunInPlaceKey      = "run.in-place"
	RunDiffRefKey      = "run.diff"
	RunExcludeFilesKey = "run.exclude-files"
	RunShowStatusKey   = "run.show-status"
	GlobalSessionKey   = "session"
	GlobalJSONKey      = "json"
	GlobalQuietKey     = "quiet"
)

const (
	cfgName      = ".polymute"
	envVarPrefix = "POLYMUTE"

	xdgConfigHomeKey = "XDG_CONFIG_HOME"

	windowsOS = "windows"
)

// Init initializes the Viper configuration.
//
// It sets the configuration file name as .polymute.yaml, adds the passed
// paths as ConfigPaths, and turns on AutomaticEnv with a POLYMUTE prefix.
// Environment variables take precedence over the configuration file and
// must be set in the format:
//
//	POLYMUTE_<SECTION>_<FLAG NAME>
func Init(cPaths []string) error {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()
	viper.SetConfigName(cfgName)
	viper.SetConfigType("yaml")

	if isSpecificFile(cPaths) {
		viper.SetConfigFile(cPaths[0])
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	} else if arePathsNotSet(cPaths) {
		cPaths = defaultConfigPaths()
	}

	for _, p := range cPaths {
		viper.AddConfigPath(p)
	}

	_ = viper.ReadInConfig() // ignore error if the file isn't present

	return nil
}

func isSpecificFile(cPaths []string) bool {
	return len(cPaths) == 1 && filepath.Ext(cPaths[0]) != ""
}

func arePathsNotSet(cPaths []string) bool {
	return len(cPaths) == 0 || (len(cPaths) == 1 && cPaths[0] == "")
}

func defaultConfigPaths() []string {
	result := make([]string, 0, 4)

	if runtime.GOOS != windowsOS {
		result = append(result, "/etc/polymute")
	}

	xchLocation, _ := homedir.Expand("~/.config")
	if x := os.Getenv(xdgConfigHomeKey); x != "" {
		xchLocation = x
	}
	xchLocation = filepath.Join(xchLocation, "polymute")
	result = append(result, xchLocation)

	homeLocation, err := homedir.Expand("~/.polymute")
	if err == nil {
		result = append(result, homeLocation)
	}

	result = append(result, ".")

	return result
}

var mutex sync.RWMutex

// Set offers synchronised access to Viper.
func Set[T any](k string, v T) {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Set(k, v)
}

// Get offers synchronised access to Viper. int and bool values are
// converted, so they can also come from environment variables, which Viper
// reads as strings.
func Get[T any](k string) T {
	var r T
	mutex.RLock()
	defer mutex.RUnlock()
	switch any(r).(type) {
	case int:
		r, _ = any(viper.GetInt(k)).(T)
	case bool:
		r, _ = any(viper.GetBool(k)).(T)
	default:
		r, _ = viper.Get(k).(T)
	}

	return r
}

// Reset clears the Viper instance. Mainly used for testing purposes.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Reset()
}
