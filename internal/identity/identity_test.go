package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capture-cli/internal/model"
)

func TestFromURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		url  string
		typ  model.ObjectType
		want string
		ok   bool
	}{
		{
			"lightning opportunity",
			"https://org.lightning.force.com/lightning/r/Opportunity/006ABC000012xYz/view",
			model.ObjectOpportunity,
			"006ABC000012xYz",
			true,
		},
		{
			"18 character id",
			"https://org.lightning.force.com/lightning/r/Account/001ABC000012xYzAAA/view",
			model.ObjectAccount,
			"001ABC000012xYzAAA",
			true,
		},
		{
			"classic style path",
			"https://org.my.salesforce.com/Lead/00QABC000012xYz",
			model.ObjectLead,
			"00QABC000012xYz",
			true,
		},
		{
			"classic bare id path",
			"https://org.my.salesforce.com/006ABC000012xYz",
			model.ObjectOpportunity,
			"006ABC000012xYz",
			true,
		},
		{
			"classic bare id with wrong key prefix",
			"https://org.my.salesforce.com/006ABC000012xYz",
			model.ObjectLead,
			"",
			false,
		},
		{
			"wrong entity segment",
			"https://org.lightning.force.com/lightning/r/Opportunity/006ABC000012xYz/view",
			model.ObjectContact,
			"",
			false,
		},
		{
			"id too short",
			"https://org.lightning.force.com/lightning/r/Task/00T123/view",
			model.ObjectTask,
			"",
			false,
		},
		{
			"list view has no id",
			"https://org.lightning.force.com/lightning/o/Opportunity/list",
			model.ObjectOpportunity,
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FromURL(tt.url, tt.typ)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	typ, id, ok := Detect("https://org.lightning.force.com/lightning/r/Contact/003ABC000012xYz/view")
	assert.True(t, ok)
	assert.Equal(t, model.ObjectContact, typ)
	assert.Equal(t, "003ABC000012xYz", id)

	typ, id, ok = Detect("https://org.my.salesforce.com/00QABC000012xYz")
	assert.True(t, ok)
	assert.Equal(t, model.ObjectLead, typ)
	assert.Equal(t, "00QABC000012xYz", id)

	_, _, ok = Detect("https://example.com/some/other/page")
	assert.False(t, ok)
}
