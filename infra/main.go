package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/passabola/chatbot/infra/cloudrun"
	"github.com/passabola/chatbot/infra/docker"
	"github.com/passabola/chatbot/infra/firestore"
	"github.com/passabola/chatbot/infra/provider"
	"github.com/passabola/chatbot/infra/secret"
	"github.com/passabola/chatbot/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// firestore holds the optional FAQ collection
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		vertexSvc, err := vertex.SetupVertex(ctx, prov)
		if err != nil {
			return err
		}

		secretSvc, err := secret.SetupSecretManager(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		urls, err := cloudrun.SetupCloudRun(ctx, prov, repo, vertexSvc, secretSvc)
		if err != nil {
			return err
		}

		ctx.Export("faqUrl", urls.FAQ)
		ctx.Export("assistantUrl", urls.Assistant)
		return nil
	})
}
