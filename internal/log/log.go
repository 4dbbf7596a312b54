package log

const (
	// FldFile is the name of the log field for storing file name information
	FldFile = "file"
	// FldPath is the name of the log field for storing path name information
	FldPath = "path"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldName is the name of an entity used in the log entry
	FldName = "name"
	// FldSearch is a search term used in a search
	FldSearch = "search"
	// FldArtist is the ID of the artist an entry refers to
	FldArtist = "artist"
	// FldVenue is the ID of the venue an entry refers to
	FldVenue = "venue"
	// FldRequest is the ID of the HTTP request being handled
	FldRequest = "req"
	// FldMethod is the HTTP method of the current request
	FldMethod = "method"
	// FldEndpoint is the name of the endpoint being called
	FldEndpoint = "endpoint"
	// FldDuration is the time an operation took
	FldDuration = "took"
	// FldStatus is the HTTP status code returned to the client
	FldStatus = "status"
	// FldVersionNum is the version of a database migration
	FldVersionNum = "migration"
)
