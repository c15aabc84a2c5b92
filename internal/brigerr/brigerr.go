// Package brigerr is the typed error taxonomy returned by every component
// and propagated verbatim to the HTTP edge, per the error handling design.
// Errors never get unwrapped into an opaque string; they carry a Kind a
// caller can match with errors.As and a human Msg for logs and clients.
package brigerr

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindUnauthorized              Kind = "Unauthorized"
	KindSshSessionFail             Kind = "SshSessionFail"
	KindReadOnlyFail               Kind = "ReadOnlyFail"
	KindZfsCommandError            Kind = "ZfsCommandError"
	KindDatasetNotFoundInConfig    Kind = "DatasetNotFoundInConfig"
	KindServerNotFoundFromDataset  Kind = "ServerNotFoundFromDataset"
	KindServerNotFoundFromRequest  Kind = "ServerNotFoundFromRequest"
	KindDatasetNotSynced           Kind = "DatasetNotSynced"
	KindNoCommonSnapshot           Kind = "NoCommonSnapshot"
	KindNoSnapshotsFound           Kind = "NoSnapshotsFound"
	KindFailedToTakeStdin          Kind = "FailedToTakeStdin"
	KindFailedToTakeStdout         Kind = "FailedToTakeStdout"
	KindFailedToRead               Kind = "FailedToRead"
	KindFailedToWrite              Kind = "FailedToWrite"
	KindFailedToShutdown           Kind = "FailedToShutdown"
	KindFailedToWaitForSend        Kind = "FailedToWaitForSend"
	KindFailedToWaitForRecv        Kind = "FailedToWaitForRecv"
	KindConfigIsInvalidJson        Kind = "ConfigIsInvalidJson"
	KindErrorWritingConfigFile     Kind = "ErrorWritingConfigFile"
)

// Error is the tagged enumeration serialized as {"error": kind, "msg": msg}.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

// MarshalJSON serializes as {"error": kind, "msg": msg}, the wire shape
// every HTTP endpoint returns on failure.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error Kind   `json:"error"`
		Msg   string `json:"msg"`
	}{Error: e.Kind, Msg: e.Msg})
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Newf(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

func Unauthorized() *Error {
	return New(KindUnauthorized, "unauthorized")
}

func SshSessionFail(user, ip string) *Error {
	return Newf(KindSshSessionFail, "failed to open ssh session to %s@%s", user, ip)
}

func ReadOnlyFail(user, ip string) *Error {
	return Newf(KindReadOnlyFail, "failed to set readonly property on %s@%s", user, ip)
}

func ZfsCommandError(msg string) *Error {
	return New(KindZfsCommandError, msg)
}

func DatasetNotFoundInConfig(dataset string) *Error {
	return Newf(KindDatasetNotFoundInConfig, "dataset %q not found in config", dataset)
}

func ServerNotFoundFromDataset(dataset, serverName string) *Error {
	return Newf(KindServerNotFoundFromDataset,
		"dataset %q references unknown server %q", dataset, serverName)
}

func ServerNotFoundFromRequest(serverName string) *Error {
	return Newf(KindServerNotFoundFromRequest, "unknown server %q", serverName)
}

func DatasetNotSynced(dataset string) *Error {
	return Newf(KindDatasetNotSynced, "dataset %q is not synced across the fleet", dataset)
}

func NoCommonSnapshot(dataset string) *Error {
	return Newf(KindNoCommonSnapshot, "no common snapshot tag for dataset %q", dataset)
}

func NoSnapshotsFound(pool, dataset string) *Error {
	return Newf(KindNoSnapshotsFound, "no snapshots found for %s/%s", pool, dataset)
}

func FailedToTakeStdin(cause error) *Error {
	return Newf(KindFailedToTakeStdin, "failed to take stdin pipe: %v", cause)
}

func FailedToTakeStdout(cause error) *Error {
	return Newf(KindFailedToTakeStdout, "failed to take stdout pipe: %v", cause)
}

func FailedToRead(cause error) *Error {
	return Newf(KindFailedToRead, "failed to read: %v", cause)
}

func FailedToWrite(cause error) *Error {
	return Newf(KindFailedToWrite, "failed to write: %v", cause)
}

func FailedToShutdown(cause error) *Error {
	return Newf(KindFailedToShutdown, "failed to shut down stdin: %v", cause)
}

func FailedToWaitForSend(cause error) *Error {
	return Newf(KindFailedToWaitForSend, "send process failed: %v", cause)
}

func FailedToWaitForRecv(cause error) *Error {
	return Newf(KindFailedToWaitForRecv, "recv process failed: %v", cause)
}

func ConfigIsInvalidJson(cause error) *Error {
	return Newf(KindConfigIsInvalidJson, "config is not valid json: %v", cause)
}

func ErrorWritingConfigFile(path string) *Error {
	return Newf(KindErrorWritingConfigFile, "failed to write config file %q", path)
}
