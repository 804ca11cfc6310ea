// Package imop implements the Porter-Duff composition operations used for
// writing textures onto atlas pages. Only the operations needed by the packer
// are provided: Copy replaces the destination pixels including the alpha channel,
// SrcOver blends the source over the backdrop and is used for debug overlays.
package imop
