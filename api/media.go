package api

import (
	"net/http"

	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type mediaItemResponse struct {
	MediaId     string `json:"mediaId"`
	UploadName  string `json:"uploadName"`
	ContentType string `json:"contentType"`
	IsVideo     bool   `json:"isVideo"`
	SizeBytes   int64  `json:"sizeBytes"`
	PublicUrl   string `json:"publicUrl"`
	CreationTs  int64  `json:"creationTs"`
}

type eventMediaResponse struct {
	EventId string               `json:"eventId"`
	Media   []*mediaItemResponse `json:"media"`
}

// ListEventMedia returns the gallery contents for an event, newest first.
func ListEventMedia(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	ctx := rcontext.ForRequest(r, logrus.WithFields(logrus.Fields{"eventId": eventId}))

	event, err := database.GetInstance().Events.Prepare(ctx).GetById(eventId)
	if err != nil {
		ctx.Log.Error("Error looking up event: ", err)
		respondJson(w, http.StatusInternalServerError, InternalServerError("error looking up event"))
		return
	}
	if event == nil {
		respondJson(w, http.StatusNotFound, NotFoundError())
		return
	}

	records, err := database.GetInstance().Media.Prepare(ctx).GetByEventId(eventId)
	if err != nil {
		ctx.Log.Error("Error listing media: ", err)
		respondJson(w, http.StatusInternalServerError, InternalServerError("error listing media"))
		return
	}

	items := make([]*mediaItemResponse, 0, len(records))
	for _, record := range records {
		items = append(items, &mediaItemResponse{
			MediaId:     record.MediaId,
			UploadName:  record.UploadName,
			ContentType: record.ContentType,
			IsVideo:     record.IsVideo,
			SizeBytes:   record.SizeBytes,
			PublicUrl:   record.PublicUrl,
			CreationTs:  record.CreationTs,
		})
	}

	respondJson(w, http.StatusOK, &eventMediaResponse{EventId: eventId, Media: items})
}
