package version

type Version struct {
	Version string `json:"version"`
}

func Get() Version {
	return Version{Version: "0.1.0"}
}
