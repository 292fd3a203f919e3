package htmlctx

// attrTypes is the fixed table mapping an HTML attribute name (lowercased)
// to the kind of content it holds, mirroring the table baked into the
// original htmlparser's attribute classifier. Names not present default to
// AttrRegular (plain text, HTML-escaped).
var attrTypes = map[string]AttrType{
	"src":        AttrURI,
	"href":       AttrURI,
	"action":     AttrURI,
	"formaction": AttrURI,
	"cite":       AttrURI,
	"background": AttrURI,
	"longdesc":   AttrURI,
	"usemap":     AttrURI,
	"profile":    AttrURI,
	"manifest":   AttrURI,
	"poster":     AttrURI,
	"icon":       AttrURI,
	"data":       AttrURI,

	"style": AttrStyle,

	"onabort":             AttrJS,
	"onblur":              AttrJS,
	"onchange":            AttrJS,
	"onclick":             AttrJS,
	"ondblclick":          AttrJS,
	"onerror":             AttrJS,
	"onfocus":             AttrJS,
	"onkeydown":           AttrJS,
	"onkeypress":          AttrJS,
	"onkeyup":             AttrJS,
	"onload":              AttrJS,
	"onmousedown":         AttrJS,
	"onmousemove":         AttrJS,
	"onmouseout":          AttrJS,
	"onmouseover":         AttrJS,
	"onmouseup":           AttrJS,
	"onreset":             AttrJS,
	"onresize":            AttrJS,
	"onscroll":            AttrJS,
	"onselect":            AttrJS,
	"onsubmit":            AttrJS,
	"onunload":            AttrJS,
	"oninput":             AttrJS,
	"oninvalid":           AttrJS,
	"oncontextmenu":       AttrJS,
	"ondrag":              AttrJS,
	"ondrop":              AttrJS,
	"onwheel":             AttrJS,
	"ontouchstart":        AttrJS,
	"ontouchend":          AttrJS,
	"ontouchmove":         AttrJS,
	"ontouchcancel":       AttrJS,
	"onanimationstart":    AttrJS,
	"onanimationend":      AttrJS,
	"onanimationiteration": AttrJS,
	"ontransitionend":     AttrJS,
}

// classifyAttr returns the AttrType for the given lowercased attribute
// name.
func classifyAttr(name string) AttrType {
	if t, ok := attrTypes[name]; ok {
		return t
	}
	return AttrRegular
}
