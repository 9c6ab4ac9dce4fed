package anilist

import "context"

// SearchCharacter returns the best character match for search.
func (c *Client) SearchCharacter(ctx context.Context, search string) (*Character, error) {
	data, err := query[struct {
		Character *Character `json:"Character"`
	}](ctx, c, "search_character", searchCharacterQuery, map[string]any{"search": search}, false)
	if err != nil {
		return nil, err
	}

	if data.Character == nil {
		return nil, ErrNotFound
	}

	return data.Character, nil
}

// SearchStaff returns the best staff match for search.
func (c *Client) SearchStaff(ctx context.Context, search string) (*Staff, error) {
	data, err := query[struct {
		Staff *Staff `json:"Staff"`
	}](ctx, c, "search_staff", searchStaffQuery, map[string]any{"search": search}, false)
	if err != nil {
		return nil, err
	}

	if data.Staff == nil {
		return nil, ErrNotFound
	}

	return data.Staff, nil
}

// SearchStudio returns the best studio match for search.
func (c *Client) SearchStudio(ctx context.Context, search string) (*Studio, error) {
	data, err := query[struct {
		Studio *Studio `json:"Studio"`
	}](ctx, c, "search_studio", searchStudioQuery, map[string]any{"search": search}, false)
	if err != nil {
		return nil, err
	}

	if data.Studio == nil {
		return nil, ErrNotFound
	}

	return data.Studio, nil
}

// SearchUser returns the AniList user named search.
func (c *Client) SearchUser(ctx context.Context, search string) (*User, error) {
	data, err := query[struct {
		User *User `json:"User"`
	}](ctx, c, "search_user", searchUserQuery, map[string]any{"search": search}, false)
	if err != nil {
		return nil, err
	}

	if data.User == nil {
		return nil, ErrNotFound
	}

	return data.User, nil
}
