package dbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		oid  uint32
		want string
	}{
		{16, TypeBoolean},
		{20, TypeInteger},
		{21, TypeInteger},
		{23, TypeInteger},
		{25, TypeString},
		{1043, TypeString},
		{700, TypeNumber},
		{1700, TypeNumber},
		{1082, TypeDate},
		{1083, TypeTime},
		{1266, TypeTime},
		{1114, TypeDatetime},
		{1184, TypeDatetime},
		{114, TypeObject},
		{3802, TypeObject},
		{2950, TypeString},
		{0, TypeAny},
		{17, TypeAny},
		{999999, TypeAny},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapType(tt.oid), "oid %d", tt.oid)
	}
}

func TestResolveOID(t *testing.T) {
	tests := []struct {
		name string
		want uint32
	}{
		{"INT4", 23},
		{"int8", 20},
		{"VARCHAR", 1043},
		{"TEXT", 25},
		{"TIMESTAMPTZ", 1184},
		{"1043", 1043},
		{"3802", 3802},
		{"no_such_type", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOID(tt.name))
		})
	}
}
