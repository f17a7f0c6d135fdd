package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/rpcclient"
	"github.com/naqd/naqd/pkg/logging"
)

// codeLockedOut is the server error for a disabled gate
const codeLockedOut = -32003

// remoteVerifier checks passwords against the server, which counts the
// attempt against its own gate for this client. The auth password is checked
// with gate.authenticate so the server opens a session for the writes that
// follow; the delete password is verified, and sent again with the delete
// itself. A server that has locked the client out answers invalid.
type remoteVerifier struct {
	rpc *rpcclient.Client
}

func (v remoteVerifier) Verify(ctx context.Context, password string, action gate.Action) (bool, error) {
	valid, err := v.verify(ctx, password, action)
	if rpcCode(err) == codeLockedOut {
		return false, nil
	}
	return valid, err
}

func (v remoteVerifier) verify(ctx context.Context, password string, action gate.Action) (bool, error) {
	if action == gate.ActionAuth {
		var res gate.Result
		if err := v.rpc.Call(ctx, "gate.authenticate", map[string]string{"password": password, "action": string(action)}, &res); err != nil {
			return false, err
		}
		return res.Valid, nil
	}

	var res struct {
		IsValid bool `json:"isValid"`
	}
	if err := v.rpc.Call(ctx, "gate.verify_password", map[string]string{"password": password, "type": string(action)}, &res); err != nil {
		return false, err
	}
	return res.IsValid, nil
}

func rpcCode(err error) int {
	var rpcErr *rpcclient.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return 0
}

// errLockedOut is returned once a local gate is disabled
var errLockedOut = errors.New(gate.MsgLockedOut)

func (a *app) gate(action gate.Action) *gate.Gate {
	return gate.New(action, remoteVerifier{rpc: a.rpc}, a.state,
		gate.WithLogger(logging.WithComponent("gate")))
}

// unlock runs the local gate for action, prompting for the password. It
// refuses without prompting once the gate is disabled on this device.
func (a *app) unlock(cmd *cobra.Command, action gate.Action) (string, error) {
	ctx := cmd.Context()
	g := a.gate(action)

	disabled, err := g.IsDisabled(ctx)
	if err != nil {
		return "", err
	}
	if disabled {
		return "", errLockedOut
	}

	password, err := a.promptSecret(cmd, "كلمة المرور: ")
	if err != nil {
		return "", err
	}

	res, err := g.Authenticate(ctx, password)
	if errors.Is(err, gate.ErrDisabled) {
		return "", errLockedOut
	}
	if err != nil {
		return "", err
	}
	if !res.Valid {
		if res.Disabled {
			return "", errLockedOut
		}
		return "", fmt.Errorf(gate.MsgWrongPassword, res.Remaining)
	}
	return password, nil
}
