package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/example/rolebot/internal/core/rolecode"
	"github.com/example/rolebot/internal/ports/primary"
)

type commandFunc func(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error

// Handler translates Discord interactions into registry and grant service calls.
// It depends only on the port interfaces and the narrow Session, so it can be
// driven by a fake session in tests.
type Handler struct {
	session  Session
	sessions primary.SessionService
	grants   primary.GrantService
	files    AttachmentFetcher
	logger   *zap.Logger
	timeout  time.Duration

	commands map[string]commandFunc
}

// NewHandler creates a Handler. timeout bounds the work done for one interaction.
func NewHandler(session Session, sessions primary.SessionService, grants primary.GrantService, files AttachmentFetcher, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		session:  session,
		sessions: sessions,
		grants:   grants,
		files:    files,
		logger:   logger,
		timeout:  timeout,
	}
	h.commands = map[string]commandFunc{
		cmdGiveRole:        h.giveRole,
		cmdGiveRoleFromCSV: h.giveRoleFromCSV,
		cmdCreateList:      h.createList,
		cmdAddEntry:        h.addEntry,
		cmdRemoveEntry:     h.removeEntry,
		cmdDeleteList:      h.deleteList,
		cmdBuildCode:       h.buildCode,
		cmdCheckList:       h.checkList,
		cmdBuild:           h.build,
	}
	return h
}

// RegisterCommands overwrites the application's slash commands, globally when
// guildIDs is empty or per guild otherwise.
func (h *Handler) RegisterCommands(ctx context.Context, appID string, guildIDs []string) error {
	targets := guildIDs
	if len(targets) == 0 {
		targets = []string{""}
	}
	for _, guildID := range targets {
		if _, err := h.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to register commands (guild %q): %w", guildID, err)
		}
	}
	h.logger.Info("commands registered", zap.Int("count", len(Commands())), zap.Strings("guilds", guildIDs))
	return nil
}

// OpenGuild opens the guild's registry so codes redeem as soon as the guild is available.
func (h *Handler) OpenGuild(ctx context.Context, guildID string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if _, err := h.sessions.Open(ctx, guildID); err != nil {
		return fmt.Errorf("failed to open guild %s: %w", guildID, err)
	}
	h.logger.Info("guild ready", zap.String("guild", guildID))
	return nil
}

// HandleInteraction dispatches one interaction. Failures are reported to the
// user as an error embed and never propagate.
func (h *Handler) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		err = h.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		err = h.handleModal(ctx, i)
	default:
		return
	}

	if err != nil {
		h.logger.Error("interaction failed",
			zap.String("guild", i.GuildID), zap.Int("type", int(i.Type)), zap.Error(err))
		h.reportError(i, fmt.Sprintf("發生未知錯誤: %v", err))
	}
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	run, ok := h.commands[data.Name]
	if !ok {
		return fmt.Errorf("unknown command %q", data.Name)
	}
	if !isAdmin(i) {
		return h.respond(ctx, i, errorEmbed(msgAdminOnly), true, nil)
	}

	h.logger.Debug("command",
		zap.String("name", data.Name), zap.String("guild", i.GuildID), zap.String("user", userID(i)))
	return run(ctx, i, optionsOf(data))
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) error {
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == customIDCodeButton:
		return h.session.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: codeModal(),
		}, discordgo.WithContext(ctx))
	case strings.HasPrefix(customID, customIDRolePrefix):
		return h.toggleFromButton(ctx, i, strings.TrimPrefix(customID, customIDRolePrefix))
	default:
		return fmt.Errorf("unknown component %q", customID)
	}
}

func (h *Handler) handleModal(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ModalSubmitData()
	if data.CustomID != customIDCodeModal {
		return fmt.Errorf("unknown modal %q", data.CustomID)
	}

	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	code := strings.TrimSpace(modalValue(data.Components, customIDCodeInput))
	entry, err := registry.RedeemCode(ctx, code)
	if errors.Is(err, primary.ErrCodeNotFound) {
		return h.respond(ctx, i, embed(titleRedeem, msgCodeNotFound), true, nil)
	}
	if err != nil {
		return err
	}

	result, err := h.grants.ToggleRole(ctx, toggleRequest(i, entry.Role))
	if err != nil {
		return err
	}
	return h.respond(ctx, i, embed(titleRedeem, toggleMessage(result, entry.Role.Name)), true, nil)
}

func (h *Handler) toggleFromButton(ctx context.Context, i *discordgo.Interaction, roleID string) error {
	role, err := h.grants.ResolveRoleByID(ctx, i.GuildID, roleID)
	if errors.Is(err, primary.ErrRoleNotFound) {
		return h.respond(ctx, i, embed(titleToggle, invalidRoleMessage(roleID)), true, nil)
	}
	if err != nil {
		return err
	}

	result, err := h.grants.ToggleRole(ctx, toggleRequest(i, role))
	if err != nil {
		return err
	}
	return h.respond(ctx, i, embed(titleToggle, toggleMessage(result, role.Name)), true, nil)
}

func (h *Handler) giveRole(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	if err := h.deferReply(ctx, i); err != nil {
		return err
	}

	roleName := strings.TrimSpace(opts.str(optRoleName))
	resp, err := h.grants.GrantRoleToMembers(ctx, primary.GrantRoleRequest{
		GuildID:   i.GuildID,
		RoleName:  roleName,
		Usernames: rolecode.SplitNames(opts.str(optUsernames)),
	})
	return h.followupGrant(ctx, i, roleName, resp, err)
}

func (h *Handler) giveRoleFromCSV(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	if err := h.deferReply(ctx, i); err != nil {
		return err
	}

	roleName := strings.TrimSpace(opts.str(optRoleName))
	var attachment *discordgo.MessageAttachment
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		attachment = resolved.Attachments[opts.attachmentID(optFile)]
	}
	if attachment == nil {
		return h.followup(ctx, i, errorEmbed("找不到上傳的檔案。"))
	}
	if attachment.Size > maxAttachmentBytes {
		return h.followup(ctx, i, errorEmbed(msgFileTooLarge))
	}

	body, err := h.files.Fetch(ctx, attachment.URL)
	if errors.Is(err, ErrAttachmentTooLarge) {
		return h.followup(ctx, i, errorEmbed(msgFileTooLarge))
	}
	if err != nil {
		return err
	}
	defer body.Close()

	resp, err := h.grants.GrantRoleFromCSV(ctx, i.GuildID, roleName, body)
	return h.followupGrant(ctx, i, roleName, resp, err)
}

func (h *Handler) followupGrant(ctx context.Context, i *discordgo.Interaction, roleName string, resp *primary.GrantRoleResponse, err error) error {
	if errors.Is(err, primary.ErrRoleNotFound) {
		return h.followup(ctx, i, embed(titleGrant, invalidRoleMessage(roleName)))
	}
	if err != nil {
		return err
	}
	return h.followup(ctx, i, embed(titleGrant, grantSummary(resp, roleName)))
}

func (h *Handler) createList(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	name := opts.str(optListName)
	err = registry.CreateList(ctx, name)
	switch {
	case errors.Is(err, primary.ErrAlreadyExists):
		return h.respond(ctx, i, embed(titleCreateList, fmt.Sprintf("清單 '%s' 已存在。", name)), true, nil)
	case errors.Is(err, primary.ErrEmptyName):
		return h.respond(ctx, i, embed(titleCreateList, "清單名稱不可為空。"), true, nil)
	case err != nil:
		return err
	}
	return h.respond(ctx, i, embed(titleCreateList, fmt.Sprintf("清單 '%s' 已建立。", name)), true, nil)
}

func (h *Handler) addEntry(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	listName := opts.str(optListName)
	roleName, code, err := rolecode.ParseEntry(opts.str(optEntry))
	if err != nil {
		return h.respond(ctx, i, embed(titleAddEntry, msgMalformedEntry), true, nil)
	}

	role, err := h.grants.ResolveRoleByName(ctx, i.GuildID, roleName)
	if errors.Is(err, primary.ErrRoleNotFound) {
		return h.respond(ctx, i, embed(titleAddEntry, invalidRoleMessage(roleName)), true, nil)
	}
	if err != nil {
		return err
	}

	entry, err := registry.AddEntry(ctx, listName, role, code)
	switch {
	case errors.Is(err, primary.ErrDuplicateCode):
		return h.respond(ctx, i, embed(titleAddEntry, msgDuplicateCode), true, nil)
	case errors.Is(err, primary.ErrEmptyName):
		return h.respond(ctx, i, embed(titleAddEntry, "清單名稱不可為空。"), true, nil)
	case err != nil:
		return err
	}
	return h.respond(ctx, i, embed(titleAddEntry,
		fmt.Sprintf("已新增組合到 '%s': %s -> 代碼: %s", listName, entry.Role.Name, entry.Code)), true, nil)
}

func (h *Handler) removeEntry(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	listName := opts.str(optListName)
	position := opts.integer(optEntryNumber)
	removed, err := registry.RemoveEntryByPosition(ctx, listName, position)
	switch {
	case errors.Is(err, primary.ErrListNotFound):
		return h.respond(ctx, i, embed(titleRemoveEntry, fmt.Sprintf("清單 '%s' 不存在。", listName)), true, nil)
	case errors.Is(err, primary.ErrInvalidPosition):
		return h.respond(ctx, i, embed(titleRemoveEntry, fmt.Sprintf("無效的組合編號: %d", position)), true, nil)
	case err != nil:
		return err
	}
	return h.respond(ctx, i, embed(titleRemoveEntry,
		fmt.Sprintf("已刪除組合從 '%s': %s -> 代碼: %s", listName, removed.Role.Name, removed.Code)), true, nil)
}

func (h *Handler) deleteList(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	listName := opts.str(optListName)
	err = registry.DeleteList(ctx, listName)
	if errors.Is(err, primary.ErrListNotFound) {
		return h.respond(ctx, i, embed(titleDeleteList, fmt.Sprintf("清單 '%s' 不存在。", listName)), true, nil)
	}
	if err != nil {
		return err
	}
	return h.respond(ctx, i, embed(titleDeleteList, fmt.Sprintf("清單 '%s' 已刪除。", listName)), true, nil)
}

func (h *Handler) buildCode(ctx context.Context, i *discordgo.Interaction, _ commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	if len(registry.ListNames(ctx)) == 0 {
		return h.respond(ctx, i, embed(titleBuildCode, msgNoLists), true, nil)
	}
	return h.respond(ctx, i, embed(titleBuildCode, msgCodePanel), false, codePanelComponents())
}

func (h *Handler) checkList(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	registry, err := h.sessions.Open(ctx, i.GuildID)
	if err != nil {
		return err
	}

	listName := opts.str(optListName)
	if listName == "" {
		names := registry.ListNames(ctx)
		if len(names) == 0 {
			return h.respond(ctx, i, embed(titleCheckList, msgNoLists), true, nil)
		}
		return h.respond(ctx, i, embed(titleCheckList, "目前的清單有：\n"+strings.Join(names, "\n")), true, nil)
	}

	entries, err := registry.Entries(ctx, listName)
	if errors.Is(err, primary.ErrListNotFound) || (err == nil && len(entries) == 0) {
		return h.respond(ctx, i, embed(titleCheckList, fmt.Sprintf("清單 '%s' 不存在或為空。", listName)), true, nil)
	}
	if err != nil {
		return err
	}

	lines := make([]string, len(entries))
	for n, e := range entries {
		lines[n] = entryLine(e)
	}
	parts := chunkLines(fmt.Sprintf("清單 '%s' 如下：\n", listName), lines, listChunkLimit)

	if err := h.respond(ctx, i, embed(titleCheckList, msgSendingList), true, nil); err != nil {
		return err
	}
	for _, part := range parts {
		_, err := h.session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content: part,
			Flags:   discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx))
		if err == nil {
			continue
		}
		h.logger.Warn("followup failed, sending listing by DM", zap.Error(err))
		if err := h.directMessage(ctx, userID(i), part); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) build(ctx context.Context, i *discordgo.Interaction, opts commandOptions) error {
	names := rolecode.SplitNames(opts.str(optRoleNames))
	if len(names) == 0 {
		return h.respond(ctx, i, embed(titleBuild, msgNoValidRoles), true, nil)
	}

	roles, err := h.grants.ResolveRoles(ctx, i.GuildID, names)
	var invalid *primary.InvalidRolesError
	if errors.As(err, &invalid) {
		return h.respond(ctx, i, embed(titleBuild, invalidRoleMessage(invalid.Names...)), true, nil)
	}
	if err != nil {
		return err
	}
	if len(roles) > maxButtons {
		return h.respond(ctx, i, embed(titleBuild, fmt.Sprintf("最多只能建立 %d 個按鈕。", maxButtons)), true, nil)
	}

	return h.respond(ctx, i, embed(titleBuild, msgRolePanel), false, rolePanelComponents(roles))
}

func (h *Handler) respond(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool, components []discordgo.MessageComponent) error {
	data := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{e},
		Components: components,
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return h.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (h *Handler) deferReply(ctx context.Context, i *discordgo.Interaction) error {
	return h.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
}

func (h *Handler) followup(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed) error {
	_, err := h.session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{e},
		Flags:  discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}

func (h *Handler) directMessage(ctx context.Context, userID, content string) error {
	channel, err := h.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := h.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// reportError tells the user something went wrong, as a fresh reply or,
// if the interaction was already answered, as a follow-up.
// It runs after the request context may have expired, so it uses its own deadline.
func (h *Handler) reportError(i *discordgo.Interaction, description string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.respond(ctx, i, errorEmbed(description), true, nil); err == nil {
		return
	}
	if err := h.followup(ctx, i, errorEmbed(description)); err != nil {
		h.logger.Warn("failed to send error response", zap.Error(err))
	}
}

func isAdmin(i *discordgo.Interaction) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func toggleRequest(i *discordgo.Interaction, role primary.Role) primary.ToggleRoleRequest {
	var held []string
	if i.Member != nil {
		held = i.Member.Roles
	}
	return primary.ToggleRoleRequest{
		GuildID:       i.GuildID,
		UserID:        userID(i),
		MemberRoleIDs: held,
		Role:          role,
	}
}
