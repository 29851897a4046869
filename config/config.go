package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var Connections *File

func init() {
	Connections = NewConfigFileWithDir(mustGetConfigHomeDir(), ConnectionsFileFullName)
}

const (
	MainDir                     = ".dwpipe"
	ConnectionsFileNamePrefix   = "connections"
	ConnectionsFileNameExt      = "yaml"
	ConnectionsFileFullName     = ConnectionsFileNamePrefix + "." + ConnectionsFileNameExt
	configFileMode  os.FileMode = 0600
	configDirMode   os.FileMode = 0700
)

// FileNotFoundError denotes failing to find a configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

// Is matches any FileNotFoundError regardless of file name.
func (f FileNotFoundError) Is(target error) bool {
	_, ok := target.(FileNotFoundError)
	return ok
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// Is matches any KeyNotFoundError regardless of key.
func (k KeyNotFoundError) Is(target error) bool {
	_, ok := target.(KeyNotFoundError)
	return ok
}

// File is a simple struct able to split file paths into the components to improve readability of code.
type File struct {
	Dirname      string
	FileName     string
	FilePrefix   string
	FileExt      string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	c := &File{Dirname: dirName, FileName: filename}
	c.FullPath = path.Join(dirName, filename)
	c.FileExt = strings.TrimLeft(path.Ext(filename), ".")
	c.FilePrefix = strings.TrimSuffix(c.FileName, "."+c.FileExt)
	c.data = make(map[string]interface{})
	return c
}

// mustGetConfigHomeDir returns the dwpipe config dir under the user's home.
func mustGetConfigHomeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		fmt.Println("unable to resolve user home directory:", err)
		os.Exit(1)
	}
	return path.Join(home, MainDir)
}

// loadData reads the YAML config file into c.data.
func (c *File) loadData() error {
	b, err := ioutil.ReadFile(c.FullPath)
	if err != nil {
		if os.IsNotExist(err) { // if the file hasn't been created yet...
			c.dataIsLoaded = true // treat as empty config
			return FileNotFoundError{name: c.FullPath}
		}
		return err
	}
	if err := yaml.Unmarshal(b, &c.data); err != nil {
		return errors.Wrapf(err, "unable to parse config file %q", c.FullPath)
	}
	c.dataIsLoaded = true
	return nil
}

// saveData writes c.data back to the YAML config file, creating the config dir
// on first use.
func (c *File) saveData() error {
	if err := os.MkdirAll(c.Dirname, configDirMode); err != nil {
		return err
	}
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(c.FullPath, b, configFileMode)
}

// Get will fetch the key from the config File into variable, out.
// out must be a pointer; values are decoded via mapstructure so nested YAML
// maps land in typed structs. Return an error if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	if !c.dataIsLoaded { // if we haven't loaded the data yet...
		err := c.loadData()
		if err != nil {
			if _, ok := err.(FileNotFoundError); !ok { // if the error is not a missing file (we handle that below)...
				return err
			}
		}
	}
	d, ok := c.data[key]
	if !ok { // if the key was not found...
		return KeyNotFoundError{configFile: c.FileName, key: key}
	}
	return mapstructure.Decode(d, out)
}

// Set stores the supplied value against key and persists the file.
func (c *File) Set(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dataIsLoaded {
		err := c.loadData()
		if err != nil {
			if _, ok := err.(FileNotFoundError); !ok {
				return err
			}
		}
	}
	// Round-trip via YAML so typed structs are stored as plain maps.
	b, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	var plain interface{}
	if err := yaml.Unmarshal(b, &plain); err != nil {
		return err
	}
	c.data[key] = plain
	return c.saveData()
}

// Delete removes key from the config file. Removing a missing key is an error
// so the caller can report bad names.
func (c *File) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dataIsLoaded {
		err := c.loadData()
		if err != nil {
			if _, ok := err.(FileNotFoundError); !ok {
				return err
			}
		}
	}
	if _, ok := c.data[key]; !ok {
		return KeyNotFoundError{configFile: c.FileName, key: key}
	}
	delete(c.data, key)
	return c.saveData()
}

// Keys returns the sorted-insertion list of top-level keys in the config file.
func (c *File) Keys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dataIsLoaded {
		err := c.loadData()
		if err != nil {
			if _, ok := err.(FileNotFoundError); !ok {
				return nil, err
			}
		}
	}
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys, nil
}
