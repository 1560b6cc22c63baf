package kv

import (
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/aKV/cmd/util"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [path...] [value]",
		Short: "Sets the value at a key path",
		Long:  "Sets the value at a key path. The last argument is the value: null, true, false, numbers and JSON documents are typed, everything else is stored as a string. Intermediate maps are created as needed.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[:len(args)-1]
			value, err := util.ParseValue(args[len(args)-1])
			if err != nil {
				return err
			}
			oldVal, _, err := rpcStore.Assoc(path, value)
			if err != nil {
				return err
			}
			if oldVal != nil {
				fmt.Printf("set successfully (replaced %s)\n", util.FormatValue(oldVal))
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [path...]",
		Short: "Reads the value at a key path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok, err := rpcStore.Get(args)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("found=false")
				return nil
			}
			fmt.Printf("found=true, value=%s\n", util.FormatValue(value))
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [path...]",
		Short: "Checks whether a key path holds a value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := rpcStore.Exists(args)
			if err != nil {
				return err
			}
			fmt.Printf("found=%t\n", found)
			return nil
		},
	}
	bsetCmd = &cobra.Command{
		Use:   "bset [key] [file]",
		Short: "Stores a binary payload under a key",
		Long:  "Stores a binary payload under a key. The payload is read from the given file, or from stdin when the file is '-'.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var r io.Reader = os.Stdin
			if args[1] != "-" {
				file, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}

			if err := rpcStore.BAssoc(key, r); err != nil {
				return err
			}
			fmt.Println("bset successfully")
			return nil
		},
	}
	bgetCmd = &cobra.Command{
		Use:   "bget [key]",
		Short: "Reads the binary payload stored under a key",
		Long:  "Reads the binary payload stored under a key and writes it to stdout, or to the file given via --output.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var w io.Writer = os.Stdout
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			return rpcStore.BGet(key, func(r io.Reader) error {
				_, err := io.Copy(w, r)
				return err
			})
		},
	}
)

func init() {
	bgetCmd.Flags().String("output", "", util.WrapString("File to write the payload to (defaults to stdout)"))
}
