package codec

import (
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
)

// Struct pool for decoding, every inbound frame allocates one otherwise
var structPool = sync.Pool{
	New: func() any {
		return &structpb.Struct{}
	},
}

// GetStruct retrieves an empty Struct from the pool
func GetStruct() *structpb.Struct {
	return structPool.Get().(*structpb.Struct)
}

// PutStruct resets a Struct and returns it to the pool
func PutStruct(s *structpb.Struct) {
	if s == nil {
		return
	}
	s.Reset()
	structPool.Put(s)
}
