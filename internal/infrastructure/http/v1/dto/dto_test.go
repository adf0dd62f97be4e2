package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain"
	"sitebook/internal/domain/inventory"
	"sitebook/internal/domain/transfer"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	var body struct {
		Plain   Date  `json:"plain"`
		Stamp   Date  `json:"stamp"`
		Empty   Date  `json:"empty"`
		Missing *Date `json:"missing"`
	}
	err := json.Unmarshal([]byte(`{"plain":"2026-03-05","stamp":"2026-03-05T10:30:00+05:30","empty":"","missing":null}`), &body)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), body.Plain.Time)
	assert.Equal(t, time.Date(2026, 3, 5, 5, 0, 0, 0, time.UTC), body.Stamp.Time)
	assert.True(t, body.Empty.IsZero())
	assert.Nil(t, body.Missing.TimePtr())
	assert.True(t, body.Missing.TimeOrZero().IsZero())

	var bad struct {
		D Date `json:"d"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"d":"05/03/2026"}`), &bad))
}

func TestDateRange(t *testing.T) {
	from, to, err := DateRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC), *to)

	exact := "2026-01-31T12:00:00Z"
	_, to, err = DateRange("", exact)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), *to)

	_, _, err = DateRange("yesterday", "")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	from, to, err = DateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestListQuery_Filter(t *testing.T) {
	f, err := ListQuery{Search: "  cement ", Limit: 20, Offset: 40}.Filter()
	require.NoError(t, err)
	assert.Equal(t, "cement", f.Search)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 40, f.Offset)
	assert.Equal(t, domain.DefaultListFilter().OrderBy, f.OrderBy)

	_, err = ListQuery{To: "not-a-date"}.Filter()
	assert.Error(t, err)
}

func TestLedgerQuery_Filter(t *testing.T) {
	projectID := id.New()
	f, err := LedgerQuery{ProjectID: projectID.String(), Category: "fuel"}.Filter()
	require.NoError(t, err)
	assert.Equal(t, projectID, f.Where["project_id"])
	assert.Equal(t, "fuel", f.Where["category"])
	assert.NotContains(t, f.Where, "bank_id")

	_, err = LedgerQuery{BankID: "nope"}.Filter()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestTransferRequest_ToRequest(t *testing.T) {
	from, to := id.New(), id.New()
	labourID := id.New()

	tests := []struct {
		name    string
		req     TransferRequest
		want    transfer.Item
		wantErr bool
	}{
		{
			name: "stock by material name",
			req:  TransferRequest{Type: "stock", MaterialName: "Cement"},
			want: transfer.StockTransfer{MaterialName: "Cement"},
		},
		{
			name: "labour by labourId",
			req:  TransferRequest{Type: "labour", LabourID: labourID.String()},
			want: transfer.LabourTransfer{LabourID: labourID},
		},
		{
			name:    "machine without item",
			req:     TransferRequest{Type: "machine"},
			wantErr: true,
		},
		{
			name:    "equipment with bad id",
			req:     TransferRequest{Type: "equipment", ItemID: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.FromProject, tt.req.ToProject = from, to
			got, err := tt.req.ToRequest()
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Item)
			assert.Equal(t, from, got.FromProject)
			assert.Equal(t, to, got.ToProject)
		})
	}
}

func TestAssetRequest_Defaults(t *testing.T) {
	projectID := id.New()
	a := AssetRequest{ProjectID: projectID, Name: " Total station ", SerialNumber: " TS-9 "}.ToEntity()

	assert.Equal(t, projectID, a.ProjectID)
	assert.Equal(t, "Total station", a.Name)
	assert.Equal(t, "TS-9", a.SerialNumber)
	assert.Equal(t, "1", a.Quantity.String())
	assert.Equal(t, inventory.AssetActive, a.Status)

	require.NoError(t, AssetRequest{Name: "Level", Status: inventory.AssetDamaged}.Apply(a))
	assert.Equal(t, inventory.AssetDamaged, a.Status)
}

func TestConsumableRequest_Apply(t *testing.T) {
	c := ConsumableRequest{Name: " Binding wire ", Unit: " kg ", Quantity: types.MustMoney("12.5")}.ToEntity()
	assert.Equal(t, "Binding wire", c.Name)
	assert.Equal(t, "kg", c.Unit)
	assert.Equal(t, "12.5", c.Quantity.String())
	assert.Nil(t, c.ExpiryDate)
	assert.False(t, id.IsNil(c.ID))
}
