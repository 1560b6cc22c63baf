package journal

import (
	"fmt"

	"github.com/ValentinKolb/aKV/cmd/util"
	"github.com/ValentinKolb/aKV/lib/store"
	"github.com/ValentinKolb/aKV/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.IStore

	// JournalCommands represents the journal command group
	JournalCommands = &cobra.Command{
		Use:               "journal",
		Short:             "Perform append-only journal operations",
		PersistentPreRunE: setupJournalClient,
	}

	// appendCmd represents the append command
	appendCmd = &cobra.Command{
		Use:   "append [key] [element]",
		Short: "Append an element to a journal",
		Long:  "Append an element to the journal stored under the given key. The journal is created on first append. The element is typed like kv set values. Prints the content-derived ID of the new entry.",
		Args:  cobra.ExactArgs(2),
		RunE:  runAppend,
	}

	// readCmd represents the read command
	readCmd = &cobra.Command{
		Use:   "read [key]",
		Short: "Read all elements of a journal",
		Long:  "Read all elements of the journal stored under the given key, printed one per line in append order.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands to journal command
	JournalCommands.AddCommand(appendCmd)
	JournalCommands.AddCommand(readCmd)

	// Add common RPC flags to the journal command
	util.SetupRPCClientFlags(JournalCommands)

	// Set default shard ID for journal operations (different from KV default)
	JournalCommands.PersistentFlags().Int("shard", 200, util.WrapString("ID of the shard to connect to"))
}

// setupJournalClient initializes the RPC store client
func setupJournalClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the store client
	rpcStore, err = client.NewRPCStore(
		shardId,
		*config,
		t,
		s,
	)

	return err
}

// runAppend handles the append command
func runAppend(_ *cobra.Command, args []string) error {
	key := args[0]

	element, err := util.ParseValue(args[1])
	if err != nil {
		return err
	}

	entryID, err := rpcStore.Append(key, element)
	if err != nil {
		return fmt.Errorf("failed to append: %v", err)
	}

	fmt.Printf("appended, id=%s\n", entryID)

	return nil
}

// runRead handles the read command
func runRead(_ *cobra.Command, args []string) error {
	key := args[0]

	elements, err := rpcStore.ReadLog(key)
	if err != nil {
		return fmt.Errorf("failed to read journal: %v", err)
	}

	for _, element := range elements {
		fmt.Println(util.FormatValue(element))
	}

	return nil
}
