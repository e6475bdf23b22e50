package domain

// AssetRef points at a media object held by the remote object store.
// AssetID is the store's identifier; URL is the public locator.
type AssetRef struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

// ProposedImage is one entry of a desired image list: either an already
// persisted reference (AssetID set) or a fresh payload to upload.
type ProposedImage struct {
	Ref      *AssetRef
	Filename string
	Data     []byte
}

// IsExisting reports whether the entry refers to an already uploaded asset.
func (p ProposedImage) IsExisting() bool {
	return p.Ref != nil && p.Ref.AssetID != ""
}
