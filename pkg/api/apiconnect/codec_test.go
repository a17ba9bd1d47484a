package apiconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/buriane/taghiane/pkg/api"
)

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{name: codecJSON}

	data, err := codec.Marshal(&api.GetBillRequest{BillID: "b1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bill_id":"b1"}`, string(data))

	var req api.GetBillRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"bill_id":"b2"}`), &req))
	assert.Equal(t, "b2", req.BillID)

	empty, err := codec.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(empty))
	require.NoError(t, codec.Unmarshal([]byte(`{}`), &emptypb.Empty{}))

	// An empty body decodes to the zero message.
	var list api.ListBillsRequest
	assert.NoError(t, codec.Unmarshal(nil, &list))
}
