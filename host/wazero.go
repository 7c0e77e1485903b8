package host

import (
	"context"
	"syscall"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/sockshim/wazeromem"
)

// ModuleName is the import namespace guests use for the socket primitives.
// The original runtime exposes them alongside the standard preview1 set.
const ModuleName = "wasi_snapshot_preview1"

var i32 = api.ValueTypeI32

// Instantiate registers the six socket primitives as a host module in r,
// backed by backend. Each invocation marshals through the calling guest's
// exported linear memory; a guest without a memory gets EFAULT.
func Instantiate(ctx context.Context, r wazero.Runtime, backend Backend) error {
	builder := r.NewHostModuleBuilder(ModuleName)

	register := func(name string, paramCount int, fn func(ctx context.Context, p *HostPrimitives, stack []uint64) int32) {
		params := make([]api.ValueType, paramCount)
		for i := range params {
			params[i] = i32
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				mem := wazeromem.WrapMemory(mod.Memory())
				if mem == nil {
					stack[0] = api.EncodeI32(int32(syscall.EFAULT))
					return
				}
				status := fn(ctx, NewPrimitives(backend, mem), stack)
				stack[0] = api.EncodeI32(status)
			}), params, []api.ValueType{i32}).
			Export(name)
	}

	register("sock_open", 3, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockOpen(ctx,
			api.DecodeI32(stack[0]), api.DecodeI32(stack[1]), api.DecodeU32(stack[2]))
	})
	register("sock_resolve", 6, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockResolve(ctx,
			api.DecodeU32(stack[0]), api.DecodeI32(stack[1]), api.DecodeI32(stack[2]),
			api.DecodeU32(stack[3]), api.DecodeI32(stack[4]), api.DecodeU32(stack[5]))
	})
	register("sock_connect", 2, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockConnect(ctx, api.DecodeI32(stack[0]), api.DecodeU32(stack[1]))
	})
	register("sock_send", 4, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockSend(ctx,
			api.DecodeI32(stack[0]), api.DecodeU32(stack[1]),
			api.DecodeI32(stack[2]), api.DecodeU32(stack[3]))
	})
	register("sock_recv", 4, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockRecv(ctx,
			api.DecodeI32(stack[0]), api.DecodeU32(stack[1]),
			api.DecodeI32(stack[2]), api.DecodeU32(stack[3]))
	})
	register("sock_close", 1, func(ctx context.Context, p *HostPrimitives, stack []uint64) int32 {
		return p.SockClose(ctx, api.DecodeI32(stack[0]))
	})

	_, err := builder.Instantiate(ctx)
	return err
}
