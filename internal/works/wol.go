package works

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/timetrigger/wol"
)

// WakeOnLAN builds a work that sends a magic packet to param "mac".
// param "addr" overrides wol.DefaultAddr.
func WakeOnLAN(param map[string]string) (timetrigger.WorkFn, error) {
	mac, err := wol.ParseMAC(param["mac"])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", timetrigger.ErrInvalidArg, err)
	}
	addr := param["addr"]

	return func(ctx context.Context, _ time.Time) error {
		return wol.Send(ctx, mac, addr)
	}, nil
}
