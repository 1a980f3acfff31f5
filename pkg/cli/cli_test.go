package cli_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/atlas/pkg/cli"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/repository/firestore"
)

func TestGetMigrationConfig(t *testing.T) {
	cfg := cli.GetMigrationConfig("stg_")

	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("stg_" + firestore.SeenCollection)
	gt.Value(t, cfg.Collections[0].TTL).NotNil()
	gt.Value(t, cfg.Collections[0].TTL.Field).Equal(firestore.SeenTTLField)
}

func TestPrintReply(t *testing.T) {
	color.NoColor = true

	t.Run("blocks are numbered", func(t *testing.T) {
		var buf bytes.Buffer
		reply := &model.Reply{Blocks: []string{"*PROJ-1:* one", "*PROJ-2:* two"}}
		gt.NoError(t, cli.PrintReply(&buf, reply)).Required()

		gt.Value(t, buf.String()).Equal("[1/2]\n*PROJ-1:* one\n[2/2]\n*PROJ-2:* two\n")
	})

	t.Run("empty reply", func(t *testing.T) {
		var buf bytes.Buffer
		gt.NoError(t, cli.PrintReply(&buf, &model.Reply{})).Required()
		gt.String(t, buf.String()).Contains("No issues to report")
	})
}
