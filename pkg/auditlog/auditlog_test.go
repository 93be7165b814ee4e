package auditlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToRecordMap_OmitsNilPointers(t *testing.T) {
	rec := &Record{UUID: "u1", Type: TypeEntityPushed, Message: "pushed", Timestamp: time.Unix(1000, 0).UTC()}
	m := toRecordMap(rec)
	require.Equal(t, "u1", m["uuid"])
	require.Equal(t, "ENTITY_PUSHED", m["type"])
	_, hasOperator := m["operator"]
	require.False(t, hasOperator)
}

func TestToRecordMap_IncludesOperatorAndEntity(t *testing.T) {
	op := "op1"
	ent := "ent1"
	rec := &Record{UUID: "u1", Type: TypeBlacklistCreated, Operator: &op, Entity: &ent, Timestamp: time.Unix(1000, 0).UTC()}
	m := toRecordMap(rec)
	require.Equal(t, "op1", m["operator"])
	require.Equal(t, "ent1", m["entity"])
}

func TestToWire_UsesUnixSeconds(t *testing.T) {
	rec := &Record{UUID: "u1", Type: TypeEntityPushed, Timestamp: time.Unix(1700000000, 0).UTC()}
	w := ToWire(rec)
	require.Equal(t, int64(1700000000), w.Timestamp)
}
