package actions

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/config"
	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter
	LogicalName string `errorTxt:"connection name" mandatory:"yes"`
	Type        string
	ConnDetails ConnectionValidator
	Force       bool
}

// RunConnectionAdd validates and persists a logical connection.
func RunConnectionAdd(cfg *ConnectionConfig) error {
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := h.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if strings.Contains(cfg.LogicalName, ".") {
		return fmt.Errorf("connection name cannot contain period characters '.'")
	}
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	scheme, err := cfg.ConnDetails.GetScheme()
	if err != nil {
		return err
	}
	switch scheme { // only schemes with registered drivers may be saved...
	case constants.ConnectionTypeMysql, constants.ConnectionTypeSqlite, "sqlite3", "file":
	default:
		return fmt.Errorf("%v is an unsupported connection type, please use one of: %v, %v",
			scheme, constants.ConnectionTypeMysql, constants.ConnectionTypeSqlite)
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		if !errors.Is(err, config.FileNotFoundError{}) && !errors.Is(err, config.KeyNotFoundError{}) { // if the error is real...
			return err
		}
	} else if tmpConn.LogicalName != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	if err := cfg.ConfigFile.Set(cfg.LogicalName, &connection); err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Printf("Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Printf("Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints the saved connections with redacted credentials.
func RunConnectionList(cfg *ConnectionConfig) error {
	keys, err := cfg.ConfigFile.Keys()
	if err != nil {
		if errors.Is(err, config.FileNotFoundError{}) { // if there is no config file yet...
			return nil
		}
		return err
	}
	for _, k := range keys {
		c := &shared.ConnectionDetails{}
		if err := cfg.ConfigFile.Get(k, c); err != nil {
			return err
		}
		fmt.Printf("%v: %v\n", k, c.String())
	}
	return nil
}
