package shared

import (
	"fmt"
	"strings"

	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical database connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data))
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data["dsn"]; ok { // if there's a DSN...
		// Parse the connection to remove passwords.
		u, err := dburl.Parse(v)
		if err == nil {
			v = u.Redacted()
		}
		x = append(x, fmt.Sprintf("  dsn = %v", v))
	} else { // else list the individual values...
		for k, v := range c.Data {
			if k == "password" {
				v = "xxxxx"
			}
			x = append(x, fmt.Sprintf("  %v = %v", k, v))
		}
	}
	return fmt.Sprintf("%v", strings.Join(x, "\n"))
}

// DBConnections is used to supply source and target connections to a propagation run.
type DBConnections map[string]ConnectionDetails
