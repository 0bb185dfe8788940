package archive

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"zewif.dev/zewif/storage"
)

// mapRPC translates gRPC status codes back into the storage sentinels so
// callers can use errors.Is across local and remote stores uniformly.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.InvalidArgument:
		// The server uses InvalidArgument for malformed or undefined CIDs.
		return storage.ErrInvalidCID
	case codes.DataLoss:
		// The server uses DataLoss when bytes do not match the requested CID.
		return storage.ErrCIDMismatch
	default:
		switch st.Message() {
		case storage.ErrNotFound.Error():
			return storage.ErrNotFound
		case storage.ErrInvalidCID.Error():
			return storage.ErrInvalidCID
		case storage.ErrCIDMismatch.Error():
			return storage.ErrCIDMismatch
		default:
			return err
		}
	}
}
