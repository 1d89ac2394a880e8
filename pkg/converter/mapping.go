// pkg/converter/mapping.go
package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/message-ingress/pkg/model"
)

// Column type names per dialect
var dialectTypes = map[Dialect]map[model.ColumnType]string{
	DialectSQLite: {
		model.TypeInteger: "INTEGER",
		model.TypeReal:    "REAL",
		model.TypeText:    "TEXT",
	},
	DialectPostgres: {
		model.TypeInteger: "BIGINT",
		model.TypeReal:    "DOUBLE PRECISION",
		model.TypeText:    "TEXT",
	},
	DialectSnowflake: {
		model.TypeInteger: "NUMBER(19,0)",
		model.TypeReal:    "FLOAT",
		model.TypeText:    "VARCHAR",
	},
}

// ColumnSQLType maps an inferred column type onto the dialect's column type
func (c *TypeConverter) ColumnSQLType(t model.ColumnType) (string, error) {
	types, ok := dialectTypes[c.dialect]
	if !ok {
		return "", fmt.Errorf("unknown dialect: %s", c.dialect)
	}

	sqlType, ok := types[t]
	if !ok {
		// Log unexpected type and fall back to text
		c.logger.Warn("Unknown column type encountered",
			zap.String("dialect", string(c.dialect)),
			zap.Stringer("type", t))
		return types[model.TypeText], nil
	}
	return sqlType, nil
}
