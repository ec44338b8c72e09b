package component

// Notice is a line of text shown under the HUD, e.g. why a door will not
// open.
type Notice struct {
	Text string
}

var NoticeComponent = NewComponent[Notice]()
