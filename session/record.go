package session

import (
	"github.com/gogo/protobuf/proto"
)

// record is the serialized form of State.
//
//	message Session {
//	  string user_id = 1;
//	  string user_name = 2;
//	  string credentials = 3;
//	  string changeset = 4;
//	}
type record struct {
	UserID      string `protobuf:"bytes,1,opt,name=user_id,json=userId,proto3" json:"user_id,omitempty"`
	UserName    string `protobuf:"bytes,2,opt,name=user_name,json=userName,proto3" json:"user_name,omitempty"`
	Credentials string `protobuf:"bytes,3,opt,name=credentials,proto3" json:"credentials,omitempty"`
	Changeset   string `protobuf:"bytes,4,opt,name=changeset,proto3" json:"changeset,omitempty"`
}

func (m *record) Reset()         { *m = record{} }
func (m *record) String() string { return proto.CompactTextString(m) }
func (*record) ProtoMessage()    {}

func marshalState(s State) ([]byte, error) {
	return proto.Marshal(&record{
		UserID:      s.UserID,
		UserName:    s.UserName,
		Credentials: s.Credentials,
		Changeset:   s.Changeset,
	})
}

func unmarshalState(data []byte) (State, error) {
	r := &record{}
	if err := proto.Unmarshal(data, r); err != nil {
		return State{}, err
	}
	return State{
		UserID:      r.UserID,
		UserName:    r.UserName,
		Credentials: r.Credentials,
		Changeset:   r.Changeset,
	}, nil
}
