package extract

// Record is one paper found on a listing page. Link fields hold an absolute
// http(s) URL or the empty string.
type Record struct {
	Title             string `json:"title" yaml:"title"`
	Authors           string `json:"authors" yaml:"authors"`
	PrimaryLink       string `json:"paper_link" yaml:"paper_link"`
	SupplementaryLink string `json:"supplementary_link" yaml:"supplementary_link"`
	ExternalLink      string `json:"arxiv_link" yaml:"arxiv_link"`
}

func (r *Record) link(f Field) *string {
	switch f {
	case FieldPrimary:
		return &r.PrimaryLink
	case FieldSupplementary:
		return &r.SupplementaryLink
	case FieldExternal:
		return &r.ExternalLink
	}
	return nil
}
