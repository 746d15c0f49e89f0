package proto

import "strings"

const (
	// Delimiter separates fields of a single protocol line.
	Delimiter = "|"
	// SystemNickname attributes server notices; no user may hold it.
	SystemNickname = "Server"
)

const (
	// Client -> server.
	TypeAuthRequest    = "AUTH_REQUEST"
	TypeUserBroadcast  = "USER_BROADCAST"
	TypeUserChangeName = "USER_CHANGENAME"

	// Server -> client.
	TypeAuthAccept     = "AUTH_ACCEPT"
	TypeAuthDenied     = "AUTH_DENIED"
	TypeMsgFormatError = "MSG_FORMAT_ERROR"
	TypeReconnect      = "RECONNECT"
	TypeBroadcast      = "TYPE_BROADCAST"
	TypeUserList       = "USER_LIST"
	TypeUserRenamed    = "USER_RENAMED"
)

// Inbound is a tokenized line received from a client.
type Inbound struct {
	Type string
	Args []string
	Raw  string
}

// Decode splits a line into its leading tag and remaining fields.
// Trailing carriage returns are dropped so CRLF clients behave like LF ones.
func Decode(line string) Inbound {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, Delimiter)
	return Inbound{
		Type: fields[0],
		Args: fields[1:],
		Raw:  line,
	}
}

// Rest returns everything after the tag, keeping embedded delimiters intact.
func (in Inbound) Rest() string {
	return strings.Join(in.Args, Delimiter)
}

// AuthRequest is the decoded form of AUTH_REQUEST|login|password.
type AuthRequest struct {
	Login    string
	Password string
}

// ParseAuthRequest accepts exactly three fields with the AUTH_REQUEST tag.
func ParseAuthRequest(in Inbound) (AuthRequest, bool) {
	if in.Type != TypeAuthRequest || len(in.Args) != 2 {
		return AuthRequest{}, false
	}
	return AuthRequest{Login: in.Args[0], Password: in.Args[1]}, true
}

// Encode joins fields with the protocol delimiter.
func Encode(fields ...string) string {
	return strings.Join(fields, Delimiter)
}

// AuthRequestLine builds the client authentication line.
func AuthRequestLine(login, password string) string {
	return Encode(TypeAuthRequest, login, password)
}

// UserBroadcastLine builds a client chat line.
func UserBroadcastLine(text string) string {
	return Encode(TypeUserBroadcast, text)
}

// UserChangeNameLine builds a client rename request.
func UserChangeNameLine(nickname string) string {
	return Encode(TypeUserChangeName, nickname)
}

// AuthAccept confirms authorization with the resolved nickname.
func AuthAccept(nickname string) string {
	return Encode(TypeAuthAccept, nickname)
}

// AuthDenied rejects a login attempt.
func AuthDenied() string {
	return TypeAuthDenied
}

// MsgFormatError echoes a line that could not be understood.
func MsgFormatError(line string) string {
	return Encode(TypeMsgFormatError, line)
}

// Reconnect tells a session it was superseded by a newer login.
func Reconnect() string {
	return TypeReconnect
}

// Broadcast is the chat envelope delivered to every authorized session.
func Broadcast(from, text string) string {
	return Encode(TypeBroadcast, from, text)
}

// UserList is the roster envelope.
func UserList(nicknames []string) string {
	return Encode(append([]string{TypeUserList}, nicknames...)...)
}

// UserRenamed announces a nickname change.
func UserRenamed(oldNickname, newNickname string) string {
	return Encode(TypeUserRenamed, oldNickname, newNickname)
}
