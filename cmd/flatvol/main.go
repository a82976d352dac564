package main

import (
	"fmt"
	"log"
	"os"

	"github.com/avaskys/flatvol/disks"
	"github.com/avaskys/flatvol/file_systems/flatfs"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage: "Manage flat-volume disk image files",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe an image",
				Action:    formatImage,
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "profile",
						Value: "flat-10m",
						Usage: "volume profile `SLUG` to format with",
					},
				},
			},
			{
				Name:      "stat",
				Usage:     "Show volume statistics",
				Action:    statImage,
				ArgsUsage: "IMAGE",
			},
			{
				Name:      "ls",
				Usage:     "List the files on a volume",
				Action:    listFiles,
				ArgsUsage: "IMAGE",
			},
			{
				Name:      "create",
				Usage:     "Create an empty file on a volume",
				Action:    createFile,
				ArgsUsage: "IMAGE  NAME",
			},
			{
				Name:      "write",
				Usage:     "Copy a host file into a file on a volume",
				Action:    writeFile,
				ArgsUsage: "IMAGE  NAME  HOST_FILE",
			},
			{
				Name:      "read",
				Usage:     "Copy a file on a volume to stdout",
				Action:    readFile,
				ArgsUsage: "IMAGE  NAME",
			},
			{
				Name:      "rm",
				Usage:     "Delete a file from a volume",
				Action:    deleteFile,
				ArgsUsage: "IMAGE  NAME",
			},
			{
				Name:      "check",
				Usage:     "Verify the consistency of a volume",
				Action:    checkImage,
				ArgsUsage: "IMAGE",
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func requireArgs(context *cli.Context, names ...string) error {
	if context.Args().Len() != len(names) {
		return cli.Exit(
			fmt.Sprintf("expected %d argument(s): %v", len(names), names), 2)
	}
	return nil
}

// mountImage mounts the image named by the first positional argument.
func mountImage(context *cli.Context) (*flatfs.Driver, error) {
	return flatfs.MountPath(context.Args().Get(0))
}

func formatImage(context *cli.Context) error {
	err := requireArgs(context, "IMAGE")
	if err != nil {
		return err
	}

	profile, err := disks.GetPredefinedVolumeProfile(context.String("profile"))
	if err != nil {
		return err
	}

	// The driver's geometry is fixed; refuse profiles it cannot produce.
	if profile.BlockSize != flatfs.BytesPerBlock ||
		profile.TotalBlocks != flatfs.TotalBlocks ||
		profile.MaxFiles != flatfs.MaxFiles {
		return fmt.Errorf(
			"profile %q is not supported by the flatfs driver; use flat-10m",
			profile.Slug)
	}

	return flatfs.FormatPath(context.Args().Get(0))
}

func statImage(context *cli.Context) error {
	err := requireArgs(context, "IMAGE")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	stat := vol.FSStat()
	fmt.Printf("block size:      %d\n", stat.BlockSize)
	fmt.Printf("total blocks:    %d\n", stat.TotalBlocks)
	fmt.Printf("free blocks:     %d\n", stat.BlocksFree)
	fmt.Printf("files:           %d\n", stat.Files)
	fmt.Printf("free file slots: %d\n", stat.FilesFree)
	fmt.Printf("max name length: %d\n", stat.MaxNameLength)
	return nil
}

func listFiles(context *cli.Context) error {
	err := requireArgs(context, "IMAGE")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	names, err := vol.ListFiles(flatfs.MaxFiles)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func createFile(context *cli.Context) error {
	err := requireArgs(context, "IMAGE", "NAME")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	return vol.Create(context.Args().Get(1))
}

func writeFile(context *cli.Context) error {
	err := requireArgs(context, "IMAGE", "NAME", "HOST_FILE")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(context.Args().Get(2))
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	return vol.WriteFile(context.Args().Get(1), data)
}

func readFile(context *cli.Context) error {
	err := requireArgs(context, "IMAGE", "NAME")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	buffer := make([]byte, flatfs.MaxFileSize)
	n, err := vol.ReadFile(context.Args().Get(1), buffer)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(buffer[:n])
	return err
}

func deleteFile(context *cli.Context) error {
	err := requireArgs(context, "IMAGE", "NAME")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	return vol.DeleteFile(context.Args().Get(1))
}

func checkImage(context *cli.Context) error {
	err := requireArgs(context, "IMAGE")
	if err != nil {
		return err
	}

	vol, err := mountImage(context)
	if err != nil {
		return err
	}
	defer vol.Unmount()

	err = vol.Check()
	if err != nil {
		return err
	}
	fmt.Println("volume is consistent")
	return nil
}
