package http

// NormalizeHeaders builds the header set sent on the wire for a request to host.
//
// Caller headers are folded in first. A caller header whose value is already
// present under another name is appended to that entry with "; " instead of
// being added under its own name. Host, Accept and Connection are then filled
// in only where the caller left them out.
//
// A missing Content-Type defaults to [ContentTypeJSON] and yields an empty
// detected type. An unknown one is replaced with [ContentTypeJSON], which is
// then also the detected type.
func NormalizeHeaders(caller Header, host string) (Header, string) {
	data := make(Header, len(caller)+4)

	for _, name := range caller.Names() {
		value := caller[name]
		if existing, ok := data.nameOf(value); ok {
			data[existing] = data[existing] + "; " + value
			continue
		}
		data[name] = value
	}

	if _, ok := data[HeaderHost]; !ok {
		data[HeaderHost] = host
	}
	if _, ok := data[HeaderAccept]; !ok {
		data[HeaderAccept] = DefaultAccept
	}
	if _, ok := data[HeaderConnection]; !ok {
		data[HeaderConnection] = DefaultConnection
	}

	contentType, ok := data[HeaderContentType]
	if !ok {
		data[HeaderContentType] = ContentTypeJSON
		return data, ""
	}

	if !isKnownContentType(contentType) {
		contentType = ContentTypeJSON
		data[HeaderContentType] = contentType
	}

	return data, contentType
}

// nameOf finds the first name, in sorted order, whose value equals value.
func (h Header) nameOf(value string) (string, bool) {
	for _, name := range h.Names() {
		if h[name] == value {
			return name, true
		}
	}
	return "", false
}
