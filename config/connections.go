package config

import (
	"fmt"

	"github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// GetConnectionType returns the connection type by un-marshalling the connection into
// a shared.ConnectionDetails struct. Return an error if the key doesn't exist.
func (c *File) GetConnectionType(connectionName string) (connectionType string, err error) {
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return "", err
	}
	if genericConn.Type == "" {
		return "", fmt.Errorf("unknown type for connection %q", connectionName)
	}
	return genericConn.Type, nil
}

// GetConnectionDetails fetches generic connection details from the File c using the connectionName to do the lookup.
// If the connection is not found then an error is produced.
// An env var of the form DW_<NAME>_DSN overrides the stored DSN so twelve-factor
// deployments can avoid the config file entirely.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	genericConn := &shared.ConnectionDetails{}
	err := c.Get(connectionName, genericConn)
	if dsn, _ := helper.GetEnvVar(helper.GetDsnEnvVarName(connectionName), false); dsn != "" { // if the env var overrides the DSN...
		if genericConn.Data == nil {
			genericConn.Data = make(map[string]string)
		}
		genericConn.Data[shared.DefaultDsnConnectionKeyNames.Dsn] = dsn
		if genericConn.Type == "" { // if the config file had nothing for this connection...
			d := &shared.DsnConnectionDetails{Dsn: dsn}
			scheme, err := d.GetScheme()
			if err != nil {
				return nil, err
			}
			genericConn.Type = scheme
			genericConn.LogicalName = connectionName
		}
		return genericConn, nil
	}
	if err != nil { // if there was an error fetching the connection from config...
		return nil, err
	}
	if genericConn.Type == "" { // if the connection was not found...
		return nil, fmt.Errorf("connection %q is not configured: use 'config' command to create it", connectionName)
	}
	return genericConn, nil
}

func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil { // if there was an error fetching the connection from config...
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}
