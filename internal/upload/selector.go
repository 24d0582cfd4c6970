package upload

// Box identifies which upload box changed.
type Box string

const (
	MainBox   Box = "main"
	FolderBox Box = "folder"
)

// Change is delivered to the OnChange hook after a box's selection is replaced.
type Change struct {
	Box      Box
	Details  string
	CanCheck bool
}

// Selection is a snapshot of what will be sent by a check.
type Selection struct {
	Main   *File
	Folder []File
}

// Selector tracks the main document and folder selections. Browsing and dropping are
// two ways into the same change path. Not safe for concurrent use.
type Selector struct {
	main   []File
	folder []File

	// OnChange, when set, is called after every change notification.
	OnChange func(Change)
}

// BrowseMain replaces the main document selection with files picked by browsing.
func (s *Selector) BrowseMain(files ...File) {
	s.main = files
	s.changed(MainBox)
}

// BrowseFolder replaces the folder selection with files picked by browsing.
func (s *Selector) BrowseFolder(files ...File) {
	s.folder = files
	s.changed(FolderBox)
}

// DropMain handles files dropped on the main document box. An empty drop is ignored;
// otherwise the drop is replayed through the browse path.
func (s *Selector) DropMain(files ...File) {
	if len(files) == 0 {
		return
	}
	s.BrowseMain(files...)
}

// DropFolder handles files dropped on the folder box.
func (s *Selector) DropFolder(files ...File) {
	if len(files) == 0 {
		return
	}
	s.BrowseFolder(files...)
}

// CanCheck reports whether both a main document and at least one folder file are selected.
func (s *Selector) CanCheck() bool {
	return len(s.main) > 0 && len(s.folder) > 0
}

// Selection returns the current selection. Only the first main file is used.
func (s *Selector) Selection() Selection {
	sel := Selection{Folder: append([]File(nil), s.folder...)}
	if len(s.main) > 0 {
		m := s.main[0]
		sel.Main = &m
	}
	return sel
}

func (s *Selector) changed(box Box) {
	if s.OnChange == nil {
		return
	}
	c := Change{Box: box, CanCheck: s.CanCheck()}
	switch box {
	case MainBox:
		if len(s.main) > 0 {
			c.Details = Details(s.main[0])
		}
	case FolderBox:
		if len(s.folder) > 0 {
			c.Details = FolderDetails(s.folder)
		}
	}
	s.OnChange(c)
}
