package TypedSQL

import (
	"github.com/nickyhof/TypedSQL/db"
	"github.com/nickyhof/TypedSQL/ps"
)

type Instance struct {
	Connection *ps.SQLConnection
	Database   *db.Database
}

// Open connects to a store through a registered database/sql driver and
// returns a database bound to that connection. An empty driver selects
// ps.DefaultDriver.
func Open(driver, dsn string, opts ...db.Option) (*Instance, error) {
	if driver == "" {
		driver = ps.DefaultDriver
	}
	conn, err := ps.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Connection: conn,
		Database:   db.New(conn, opts...),
	}, nil
}

func (instance *Instance) Close() error {
	return instance.Database.Close()
}
