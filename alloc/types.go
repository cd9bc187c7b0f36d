package alloc

import "github.com/coreholds/amtval/block"

// Block and Layout are re-exported as aliases of the block package's types
// so that callers of alloc rarely need to import block directly, mirroring
// how the reference implementation's hold.rs re-exports block::{Block,
// Layout} for its own callers.
type (
	Block  = block.Block
	Layout = block.Layout
)

// ZSP is the canonical zero-size pointer (see block.ZSP).
var ZSP = block.ZSP

// ForType and ForArray re-export block's layout constructors so callers
// building on top of alloc (lease, value, hamt) rarely need to import block
// directly.
func ForType[T any]() Layout { return block.ForType[T]() }

func ForArray[T any](n uintptr) (Layout, error) { return block.ForArray[T](n) }
