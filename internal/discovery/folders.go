package discovery

// FolderSet is the ordered list of folders scanned by a discovery pass:
// user-configured folders first, then the built-in folder.
type FolderSet struct {
	User    []string
	Builtin string
}

// Folders returns the scan order. Duplicates are kept.
func (s FolderSet) Folders() []string {
	out := make([]string, 0, len(s.User)+1)
	out = append(out, s.User...)
	if s.Builtin != "" {
		out = append(out, s.Builtin)
	}
	return out
}
