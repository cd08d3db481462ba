package discord

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Ensure fakes implement the interfaces
var (
	_ Session           = (*fakeSession)(nil)
	_ AttachmentFetcher = (*fakeFetcher)(nil)
)

// fakeSession records everything the adapter sends and serves a fixed roster.
type fakeSession struct {
	mu sync.Mutex

	roles   []*discordgo.Role
	members []*discordgo.Member

	responses   []*discordgo.InteractionResponse
	respondOpts []int // request options passed per response
	followups   []*discordgo.WebhookParams
	dms         []string
	overwrites  map[string][]*discordgo.ApplicationCommand
	added       map[string][]string
	removed     map[string][]string

	respondErr  error
	followupErr error
	searchErr   error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		roles: []*discordgo.Role{
			{ID: "100", Name: "VIP"},
			{ID: "200", Name: "Gold"},
		},
		overwrites: make(map[string][]*discordgo.ApplicationCommand),
		added:      make(map[string][]string),
		removed:    make(map[string][]string),
	}
}

func (f *fakeSession) addMember(userID, username, nick string) {
	f.members = append(f.members, &discordgo.Member{
		User: &discordgo.User{ID: userID, Username: username},
		Nick: nick,
	})
}

func (f *fakeSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	f.respondOpts = append(f.respondOpts, len(options))
	return nil
}

func (f *fakeSession) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.followupErr != nil {
		return nil, f.followupErr
	}
	f.followups = append(f.followups, data)
	return &discordgo.Message{ID: "m1"}, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrites[guildID] = commands
	return commands, nil
}

func (f *fakeSession) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, nil
}

func (f *fakeSession) GuildMembersSearch(guildID, query string, limit int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*discordgo.Member
	for _, m := range f.members {
		if strings.HasPrefix(m.User.Username, query) || strings.HasPrefix(m.Nick, query) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added[userID] = append(f.added[userID], roleID)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[userID] = append(f.removed[userID], roleID)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms = append(f.dms, content)
	return &discordgo.Message{ID: "dm"}, nil
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

// fakeFetcher serves attachment bodies from memory keyed by URL.
type fakeFetcher struct {
	files map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	body, ok := f.files[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewBufferString(body)), nil
}

// ============================================================================
// Interaction builders
// ============================================================================

const testGuildID = "g1"

func adminMember(userID string, roleIDs ...string) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: userID, Username: "admin"},
		Roles:       roleIDs,
		Permissions: discordgo.PermissionAdministrator,
	}
}

func plainMember(userID string, roleIDs ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: userID, Username: "member"},
		Roles: roleIDs,
	}
}

func strOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func commandInteraction(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: testGuildID,
		Member:  adminMember("admin-1"),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: opts,
		},
	}
}

func buttonInteraction(customID string, member *discordgo.Member) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: testGuildID,
		Member:  member,
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}
}

func modalInteraction(code string, member *discordgo.Member) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionModalSubmit,
		GuildID: testGuildID,
		Member:  member,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customIDCodeModal,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: customIDCodeInput, Value: code},
				}},
			},
		},
	}
}
