//go:build nozstd

package autoopen

// ZstdHandler is registered without constructors in nozstd builds.
var ZstdHandler = &Handler{
	Suffixes:    []string{".zst", ".zstd"},
	Description: "ZStandard",
	Requires:    zstdPackage,
	Magic:       zstdMagic,
}

func init() {
	Register(ZstdHandler)
}
