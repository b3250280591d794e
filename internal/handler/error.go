package handler

import "fmt"

// SoundAlreadyExistsError indicates a sound with the given name is already
// registered in the guild.
type SoundAlreadyExistsError struct {
	GuildID string
	Name    string
}

func (e *SoundAlreadyExistsError) Error() string {
	return fmt.Sprintf("sound already exists for guild %s with name %s", e.GuildID, e.Name)
}

var _ error = (*SoundAlreadyExistsError)(nil)

// StorageLimitError indicates a guild would exceed its audio storage quota.
type StorageLimitError struct {
	Requested int64
	Current   int64
	Max       int64
}

func (e *StorageLimitError) Error() string {
	return fmt.Sprintf("storage limit exceeded: requested %d, current %d, max %d", e.Requested, e.Current, e.Max)
}

var _ error = (*StorageLimitError)(nil)

// UserError is an error type that is used to represent
// an error that should be displayed to the user.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

var _ error = (*UserError)(nil)
