package datastores

type Kind string

const (
	GalleryMediaKind Kind = "gallery_media"
	BackupsKind      Kind = "backups"
	AllKind          Kind = "all"
)

func HasListedKind(have []string, want Kind) bool {
	for _, k := range have {
		k2 := Kind(k)
		if k2 == want || k2 == AllKind {
			return true
		}
	}
	return false
}
