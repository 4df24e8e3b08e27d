package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

var (
	localFile  protoreflect.FileDescriptor
	geyserFile protoreflect.FileDescriptor

	// Files resolves the descriptors of this package, for tooling that
	// needs a resolver (protojson, reflection).
	Files = new(protoregistry.Files)
)

func init() {
	localFile = mustBuild(localFileProto())
	geyserFile = mustBuild(geyserFileProto())
}

// mustBuild resolves fdp against the global registry, where
// google/protobuf/timestamp.proto is linked in through timestamppb.
func mustBuild(fdp *descriptorpb.FileDescriptorProto) protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("schema: build %s: %v", fdp.GetName(), err))
	}
	if err := Files.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("schema: register %s: %v", fdp.GetName(), err))
	}
	return fd
}
