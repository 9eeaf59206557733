// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/temirov/dirclip/internal/collector"
	"github.com/temirov/dirclip/internal/config"
	"github.com/temirov/dirclip/internal/delivery"
	"github.com/temirov/dirclip/internal/policy"
	"github.com/temirov/dirclip/internal/services/clipboard"
	"github.com/temirov/dirclip/internal/splitter"
	"github.com/temirov/dirclip/internal/tokenizer"
	"github.com/temirov/dirclip/internal/types"
	"github.com/temirov/dirclip/internal/utils"
	"github.com/temirov/dirclip/internal/walker"
)

const (
	extensionFlagName  = "ext"
	technologyFlagName = "tech"
	recursiveFlagName  = "recursive"
	splitFlagName      = "split"
	maxTokensFlagName  = "max-tokens"
	modelFlagName      = "model"
	selfNameFlagName   = "self-name"
	configFlagName     = "config"
	versionFlagName    = "version"
	versionTemplate    = "dirclip version: %s\n"

	defaultPath      = "."
	defaultMaxTokens = 50000

	rootUse              = "dirclip"
	rootShortDescription = "dirclip command line interface"
	rootLongDescription  = `dirclip copies a filtered snapshot of a directory to the clipboard.
It renders an ASCII directory tree, optionally followed by file contents, and
splits oversized payloads into token-bounded chunks delivered one at a time.`
	versionFlagDescription = "display application version"

	copyUse              = "copy [path]"
	treeUse              = "tree [path]"
	copyAlias            = "c"
	treeAlias            = "t"
	copyShortDescription = "copy directory tree and file contents (" + copyAlias + ")"
	treeShortDescription = "copy the directory tree only (" + treeAlias + ")"

	// copyLongDescription provides detailed help for the copy command.
	copyLongDescription = `Aggregate the directory tree and matching file contents into one payload
and copy it to the clipboard. Use --tech to enable technology presets,
--split to break oversized payloads into chunks under --max-tokens.`
	// copyUsageExample demonstrates copy command usage.
	copyUsageExample = `  # Copy all Python and SQL sources under the current directory
  dirclip copy --tech python --tech sql -r

  # Copy one directory's .go files, split into 5000-token chunks
  dirclip copy --ext .go --split --max-tokens 5000 ./internal`

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Copy the filtered directory tree to the clipboard without file bodies.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Copy the tree of a project, excluding rust build outputs
  dirclip tree --tech rust .`

	extensionFlagDescription  = "extension filter; \".*\" selects all files"
	technologyFlagDescription = "technology preset to enable (repeatable)"
	recursiveFlagDescription  = "collect file contents from subdirectories"
	splitFlagDescription      = "split oversized payloads into interactive chunks"
	maxTokensFlagDescription  = "token ceiling for each chunk"
	modelFlagDescription      = "tokenizer model the ceiling is tuned for"
	selfNameFlagDescription   = "file name excluded as the tool's own source"
	configFlagDescription     = "explicit configuration file path"

	treeHeaderFormat        = "Directory tree of %s (filtered):\n%s"
	recursiveHeaderFormat   = "Directory tree of %s (filtered):\n%s\n\n"
	treeGenerationErrorText = "could not generate directory tree"
	nothingToCopyMessage    = "nothing to copy – no matching files found"
	nonTerminalInputWarning = "stdin is not a terminal; chunk acknowledgments will be read from piped input"

	errorAbsolutePathFormat = "abs failed for '%s': %w"
	errorPathMissingFormat  = "path '%s' does not exist"
	errorStatFormat         = "stat failed for '%s': %w"
	errorNotDirectoryFormat = "path '%s' is not a directory"
)

// runtimeDependencies bundles the external collaborators an aggregation run
// delivers through, so tests can substitute fakes for the clipboard and the
// interactive streams.
type runtimeDependencies struct {
	sink   clipboard.Copier
	input  io.Reader
	output io.Writer
}

func defaultDependencies() runtimeDependencies {
	return runtimeDependencies{
		sink:   clipboard.NewService(),
		input:  os.Stdin,
		output: os.Stdout,
	}
}

// aggregationOptions carries one invocation's resolved inputs.
type aggregationOptions struct {
	root             string
	defaultExtension string
	technologies     []string
	recursive        bool
	includeContent   bool
	split            bool
	maxTokens        int
	model            string
	selfName         string
}

// Execute runs the dirclip application.
func Execute(loggerInstance *zap.Logger) error {
	rootCommand := createRootCommand(loggerInstance)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(loggerInstance *zap.Logger) *cobra.Command {
	var showVersion bool
	var configFilePath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createCopyCommand(loggerInstance, &configFilePath),
		createTreeCommand(loggerInstance, &configFilePath),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createCopyCommand returns the copy subcommand.
func createCopyCommand(loggerInstance *zap.Logger, configFilePath *string) *cobra.Command {
	options := aggregationOptions{
		defaultExtension: types.AllExtensionsSentinel,
		includeContent:   true,
		maxTokens:        defaultMaxTokens,
		model:            tokenizer.DefaultModel,
	}

	copyCommand := &cobra.Command{
		Use:     copyUse,
		Aliases: []string{copyAlias},
		Short:   copyShortDescription,
		Long:    copyLongDescription,
		Example: copyUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options.root = defaultPath
			if len(arguments) == 1 {
				options.root = arguments[0]
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: *configFilePath})
			if configurationError != nil {
				return configurationError
			}
			applyConfigurationDefaults(command, &options, applicationConfiguration.Copy)
			return runAggregation(loggerInstance, options, defaultDependencies())
		},
	}

	copyCommand.Flags().StringVar(&options.defaultExtension, extensionFlagName, types.AllExtensionsSentinel, extensionFlagDescription)
	copyCommand.Flags().StringArrayVar(&options.technologies, technologyFlagName, nil, technologyFlagDescription)
	copyCommand.Flags().BoolVarP(&options.recursive, recursiveFlagName, "r", false, recursiveFlagDescription)
	addDeliveryFlags(copyCommand, &options)
	copyCommand.Flags().StringVar(&options.selfName, selfNameFlagName, "", selfNameFlagDescription)
	return copyCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(loggerInstance *zap.Logger, configFilePath *string) *cobra.Command {
	options := aggregationOptions{
		defaultExtension: types.AllExtensionsSentinel,
		maxTokens:        defaultMaxTokens,
		model:            tokenizer.DefaultModel,
	}

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options.root = defaultPath
			if len(arguments) == 1 {
				options.root = arguments[0]
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: *configFilePath})
			if configurationError != nil {
				return configurationError
			}
			applyConfigurationDefaults(command, &options, applicationConfiguration.Tree)
			return runAggregation(loggerInstance, options, defaultDependencies())
		},
	}

	treeCommand.Flags().StringArrayVar(&options.technologies, technologyFlagName, nil, technologyFlagDescription)
	addDeliveryFlags(treeCommand, &options)
	return treeCommand
}

// addDeliveryFlags registers the flags shared by payload-delivering commands.
func addDeliveryFlags(command *cobra.Command, options *aggregationOptions) {
	command.Flags().BoolVar(&options.split, splitFlagName, false, splitFlagDescription)
	command.Flags().IntVar(&options.maxTokens, maxTokensFlagName, defaultMaxTokens, maxTokensFlagDescription)
	command.Flags().StringVar(&options.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
}

// applyConfigurationDefaults overlays configuration-file values onto options
// for every flag the user did not set explicitly.
func applyConfigurationDefaults(command *cobra.Command, options *aggregationOptions, configuration config.AggregationConfiguration) {
	flags := command.Flags()
	if !flags.Changed(extensionFlagName) && configuration.Extension != "" && flags.Lookup(extensionFlagName) != nil {
		options.defaultExtension = configuration.Extension
	}
	if !flags.Changed(technologyFlagName) && len(configuration.Technologies) > 0 {
		options.technologies = configuration.Technologies
	}
	if flags.Lookup(recursiveFlagName) != nil && !flags.Changed(recursiveFlagName) && configuration.Recursive != nil {
		options.recursive = *configuration.Recursive
	}
	if !flags.Changed(splitFlagName) && configuration.Split != nil {
		options.split = *configuration.Split
	}
	if !flags.Changed(maxTokensFlagName) && configuration.MaxTokens != nil {
		options.maxTokens = *configuration.MaxTokens
	}
	if !flags.Changed(modelFlagName) && configuration.Model != "" {
		options.model = configuration.Model
	}
}

// runAggregation executes one invocation: resolve the policy, walk the
// subtree, assemble the payload and deliver it.
func runAggregation(loggerInstance *zap.Logger, options aggregationOptions, dependencies runtimeDependencies) error {
	validatedRoot, validationError := resolveAndValidateRoot(options.root)
	if validationError != nil {
		return validationError
	}

	presetSelection := presetSelectionFromNames(options.technologies)
	extensionFilter := policy.ResolveExtensions(options.defaultExtension, presetSelection)
	directoryExcludes := policy.ResolveExcludes(presetSelection)

	tokenCounter := tokenizer.NewCounter(options.model)
	warn := func(message string) { loggerInstance.Warn(message) }
	progress := func(message string) { loggerInstance.Info(message) }

	treeText, treeError := walker.RenderTree(validatedRoot.AbsolutePath, directoryExcludes, warn)
	if treeError != nil {
		loggerInstance.Error(treeGenerationErrorText, zap.Error(treeError))
		treeText = ""
	}

	deliveryLoop := delivery.NewLoop(dependencies.sink, tokenCounter, dependencies.input, dependencies.output)

	if !options.includeContent {
		payload := fmt.Sprintf(treeHeaderFormat, validatedRoot.AbsolutePath, treeText)
		return deliverPayload(loggerInstance, deliveryLoop, tokenCounter, payload, options.split, options.maxTokens)
	}

	selfName := options.selfName
	if selfName == "" {
		selfName = filepath.Base(os.Args[0])
	}
	fileCollector := collector.New(extensionFilter, selfName, warn, progress)

	var contentText string
	var collectionError error
	if options.recursive {
		contentText, collectionError = collectRecursive(validatedRoot.AbsolutePath, directoryExcludes, fileCollector, warn)
	} else {
		contentText, collectionError = collectRootOnly(validatedRoot.AbsolutePath, fileCollector)
	}
	if collectionError != nil {
		return collectionError
	}

	if contentText == "" && treeText == "" {
		loggerInstance.Info(nothingToCopyMessage)
		return nil
	}

	payload := contentText
	if options.recursive {
		payload = fmt.Sprintf(recursiveHeaderFormat, validatedRoot.AbsolutePath, treeText) + contentText
	}

	return deliverPayload(loggerInstance, deliveryLoop, tokenCounter, payload, options.split, options.maxTokens)
}

// collectRootOnly gathers records from the scan root's direct entries.
func collectRootOnly(rootPath string, fileCollector *collector.Collector) (string, error) {
	records, collectError := fileCollector.Collect(rootPath, types.RootLabel)
	if collectError != nil {
		return "", collectError
	}
	var payloadBuilder strings.Builder
	for _, record := range records {
		payloadBuilder.WriteString(record.Render())
	}
	return payloadBuilder.String(), nil
}

// collectRecursive streams the filtered walk sequence from the walker into
// the collector: the walker produces directory listings on a channel while
// the consumer appends each listing's records to the payload buffer.
func collectRecursive(rootPath string, directoryExcludes types.DirectoryExcludeSet, fileCollector *collector.Collector, warn walker.WarnFunc) (string, error) {
	group, streamContext := errgroup.WithContext(context.Background())
	listings := make(chan types.DirectoryListing)

	group.Go(func() error {
		defer close(listings)
		streamOptions := walker.StreamOptions{
			Root:     rootPath,
			Excludes: directoryExcludes,
			Warn:     warn,
		}
		return walker.StreamDirectories(streamContext, streamOptions, listings)
	})

	var payloadBuilder strings.Builder
	group.Go(func() error {
		for {
			select {
			case <-streamContext.Done():
				return streamContext.Err()
			case listing, open := <-listings:
				if !open {
					return nil
				}
				for _, record := range fileCollector.CollectListing(listing) {
					payloadBuilder.WriteString(record.Render())
				}
			}
		}
	})

	if waitError := group.Wait(); waitError != nil {
		return "", waitError
	}
	return payloadBuilder.String(), nil
}

// deliverPayload sizes the payload and either transfers it whole or, when
// splitting was requested and the ceiling is exceeded, hands it to the
// interactive chunk loop.
func deliverPayload(loggerInstance *zap.Logger, deliveryLoop *delivery.Loop, tokenCounter tokenizer.Counter, payload string, split bool, maxTokens int) error {
	totalTokens := tokenCounter.CountString(payload)
	if split && totalTokens > maxTokens {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			loggerInstance.Warn(nonTerminalInputWarning)
		}
		chunks := splitter.Split(payload, maxTokens, tokenCounter)
		return deliveryLoop.DeliverChunks(chunks, utils.CountLines(payload), totalTokens, maxTokens)
	}
	return deliveryLoop.DeliverWhole(payload)
}

// presetSelectionFromNames converts the repeated --tech values into the
// preset map the policy consumes. Every listed preset is enabled; unknown
// names are carried through and ignored by the policy.
func presetSelectionFromNames(technologies []string) map[string]bool {
	if len(technologies) == 0 {
		return nil
	}
	selection := make(map[string]bool, len(technologies))
	for _, technologyName := range technologies {
		trimmedName := strings.TrimSpace(technologyName)
		if trimmedName == "" {
			continue
		}
		selection[trimmedName] = true
	}
	return selection
}

// resolveAndValidateRoot converts the input path to absolute form and
// verifies it is an existing directory.
func resolveAndValidateRoot(inputPath string) (types.ValidatedPath, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	information, fileStatusError := os.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !information.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true}, nil
}
