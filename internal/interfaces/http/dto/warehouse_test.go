package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
)

func TestAllocateItemsRequest_ToManualAllocations(t *testing.T) {
	req := AllocateItemsRequest{
		POID: 4,
		Allocations: []ItemAllocationLine{
			{ItemID: 10, BinID: 1, Quantity: 30},
			{ItemID: 11, BinID: 2, Quantity: 5},
		},
	}

	assert.Equal(t, []appwarehouse.ManualAllocation{
		{ItemID: 10, BinID: 1, Quantity: 30},
		{ItemID: 11, BinID: 2, Quantity: 5},
	}, req.ToManualAllocations())
}
