package ids

import (
	"strconv"

	"github.com/gatherpics/media-ingest/util"
)

func NewUniqueId() (string, error) {
	b, err := util.GenerateRandomBytes(64)
	if err != nil {
		return "", err
	}
	return util.GetSha1OfString(string(b) + strconv.FormatInt(util.NowMillis(), 10))
}
