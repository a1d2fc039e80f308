// Package explore generates guided exploration material for a lakehouse:
// starter queries, schema walkthroughs, and table profiles.
package explore

import (
	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"go.uber.org/zap"
)

// Service answers exploration questions using the lakehouse catalog.
type Service struct {
	conn    *lakehouse.Conn
	catalog *lakehouse.Catalog
	logger  *zap.Logger
}

// NewService creates an exploration service over an open connection.
func NewService(conn *lakehouse.Conn, catalog *lakehouse.Catalog, logger *zap.Logger) *Service {
	return &Service{
		conn:    conn,
		catalog: catalog,
		logger:  logger,
	}
}
