// Package disks holds the registry of named volume profiles. A profile
// describes the fixed geometry of an image format; tooling resolves a
// profile by slug instead of hard-coding sizes.
package disks

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// VolumeProfile is one row of the profile registry.
type VolumeProfile struct {
	Name string `csv:"name"`
	Slug string `csv:"slug"`

	// BlockSize is the size of a logical block, in bytes.
	BlockSize uint `csv:"block_size"`
	// TotalBlocks is the number of blocks in the image, metadata included.
	TotalBlocks uint `csv:"total_blocks"`
	// MaxFiles is the capacity of the inode table.
	MaxFiles uint `csv:"max_files"`
	// DirectBlocksPerFile is the number of inline block pointers per inode.
	DirectBlocksPerFile uint `csv:"direct_blocks_per_file"`
	// MaxFilenameLength is the on-disk name field size, terminator included.
	MaxFilenameLength uint `csv:"max_filename_length"`
	// MetadataBlocks is the number of leading reserved blocks.
	MetadataBlocks uint   `csv:"metadata_blocks"`
	Notes          string `csv:"notes"`
}

// TotalSizeBytes gives the exact size of an image with this profile.
func (p *VolumeProfile) TotalSizeBytes() int64 {
	return int64(p.BlockSize) * int64(p.TotalBlocks)
}

// MaxFileSizeBytes gives the largest payload one file can hold.
func (p *VolumeProfile) MaxFileSizeBytes() int64 {
	return int64(p.BlockSize) * int64(p.DirectBlocksPerFile)
}

//go:embed volume-profiles.csv
var volumeProfilesRawCSV string
var volumeProfiles = make(map[string]VolumeProfile)

// GetPredefinedVolumeProfile looks up a profile by its slug.
func GetPredefinedVolumeProfile(slug string) (VolumeProfile, error) {
	profile, ok := volumeProfiles[slug]
	if ok {
		return profile, nil
	}

	err := fmt.Errorf("no predefined volume profile exists with slug %q", slug)
	return VolumeProfile{}, err
}

// Slugs returns the slugs of all registered profiles.
func Slugs() []string {
	slugs := make([]string, 0, len(volumeProfiles))
	for slug := range volumeProfiles {
		slugs = append(slugs, slug)
	}
	return slugs
}

func init() {
	reader := strings.NewReader(volumeProfilesRawCSV)
	err := gocsv.UnmarshalToCallback(
		reader,
		func(row VolumeProfile) error {
			_, exists := volumeProfiles[row.Slug]
			if exists {
				return fmt.Errorf(
					"duplicate definition for profile %q found on row %d",
					row.Slug,
					len(volumeProfiles)+1,
				)
			}
			volumeProfiles[row.Slug] = row
			return nil
		},
	)
	if err != nil && err != io.EOF {
		panic(err)
	}
}
