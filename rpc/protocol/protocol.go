// Package protocol holds the gRPC contract between legiond and its clients.
// Messages are protobuf well-known types.
package protocol

//go:generate protoc --go-grpc_out=. --go-grpc_opt=paths=source_relative powermode.proto

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// NewSetModeRequest builds the SetMode request message
func NewSetModeRequest(mode string, force bool) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"mode":  structpb.NewStringValue(mode),
			"force": structpb.NewBoolValue(force),
		},
	}
}
