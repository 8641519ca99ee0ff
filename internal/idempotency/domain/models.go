// Package domain holds the idempotency key store used to make mutating
// AR operations safe to retry.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Record pins an idempotency key to the request fingerprint it was first
// used with and the serialized result of that first execution. A key is
// unique within its organization.
type Record struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID       snowflake.ID   `json:"org_id" gorm:"not null;uniqueIndex:ux_idempotency_org_key,priority:1"`
	Key         string         `json:"key" gorm:"column:idempotency_key;type:text;not null;uniqueIndex:ux_idempotency_org_key,priority:2"`
	Fingerprint string         `json:"fingerprint" gorm:"type:text;not null"`
	Response    datatypes.JSON `json:"response" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "idempotency_keys" }

// Fingerprint hashes a request payload so a reused key can be checked
// against the payload it was first seen with. json.Marshal sorts map keys,
// which keeps the digest stable for equivalent payloads.
func Fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
