package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
)

type sampleLot struct {
	entity.Base
	MaterialName string         `db:"material_name" json:"materialName"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	VendorID     *id.ID         `db:"vendor_id" json:"vendorId"`
	Ignored      string         `db:"-"`
	NoTag        string
}

func TestExtractDBColumns_EmbeddedBase(t *testing.T) {
	cols := ExtractDBColumns[sampleLot]()

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at", "material_name", "quantity", "vendor_id",
	}, cols)
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	vendor := id.New()
	lot := &sampleLot{
		Base: entity.Base{
			ID:        id.New(),
			Version:   3,
			CreatedAt: now,
			UpdatedAt: now,
		},
		MaterialName: "Cement",
		Quantity:     types.MustMoney("50"),
		VendorID:     &vendor,
		Ignored:      "x",
	}

	m := StructToMap(lot)

	assert.Len(t, m, 7)
	assert.Equal(t, lot.ID, m["id"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, "Cement", m["material_name"])
	assert.Equal(t, &vendor, m["vendor_id"])
	assert.NotContains(t, m, "Ignored")
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	var nilLot *sampleLot
	assert.Nil(t, StructToMap(nilLot))
}
