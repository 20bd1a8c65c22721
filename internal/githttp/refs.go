package githttp

import (
	"fmt"
	"io"
	"strings"

	"github.com/cdk2git/cdk2git/internal"
	"github.com/cdk2git/cdk2git/internal/object"
	"github.com/cdk2git/cdk2git/internal/pktline"
)

// uploadPackService is the only service this server advertises.
const uploadPackService = "git-upload-pack"

// An Advertisement is the reference set for one synthesized snapshot:
// HEAD as a symref to the single branch, and the branch itself.
type Advertisement struct {
	CommitID object.ID
	Branch   string
}

// Capabilities returns the capability list sent on the HEAD line. The
// symref capability lets clients resolve HEAD without a second round trip;
// nothing requiring delta or shallow support is advertised.
func (a Advertisement) Capabilities() string {
	return strings.Join([]string{
		"side-band-64k",
		"no-progress",
		fmt.Sprintf("symref=HEAD:refs/heads/%s", a.Branch),
		fmt.Sprintf("agent=cdk2git/%s", internal.Version),
	}, " ")
}

// Encode writes the full smart-HTTP advertisement body: the service
// announcement, a flush, HEAD with capabilities, the branch reference, and
// a final flush.
func (a Advertisement) Encode(w io.Writer) error {
	pw := pktline.NewWriter(w)
	if _, err := fmt.Fprintf(pw, "# service=%s\n", uploadPackService); err != nil {
		return err
	}
	if err := pw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(pw, "%s HEAD\x00%s\n", a.CommitID, a.Capabilities()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(pw, "%s refs/heads/%s\n", a.CommitID, a.Branch); err != nil {
		return err
	}
	return pw.Flush()
}
